package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, Mode: "release"},
		Session: SessionConfig{Backend: "memory"},
		Files:   FilesConfig{MaxFileSizeMB: 100},
		Gateway: GatewayConfig{MaxRetries: 3, CacheMaxEntries: 100, CacheEvictCount: 20},
	}
}

func TestConfig_Validate(t *testing.T) {
	Convey("Config.Validate 校验关键配置项", t, func() {
		Convey("完整配置通过校验", func() {
			So(validConfig().Validate(), ShouldBeNil)
		})

		Convey("端口越界会失败", func() {
			cfg := validConfig()
			cfg.Server.Port = 70000
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("未知的会话后端会失败", func() {
			cfg := validConfig()
			cfg.Session.Backend = "sqlite"
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("file 后端必须配置目录", func() {
			cfg := validConfig()
			cfg.Session.Backend = "file"
			So(cfg.Validate(), ShouldNotBeNil)
			cfg.Session.FileDir = "/tmp/sessions"
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("重试次数至少为 1", func() {
			cfg := validConfig()
			cfg.Gateway.MaxRetries = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("淘汰数量不能超过缓存上限", func() {
			cfg := validConfig()
			cfg.Gateway.CacheEvictCount = 200
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestFilesConfig_MaxFileSize(t *testing.T) {
	Convey("MaxFileSize 按 MB 换算字节", t, func() {
		So(FilesConfig{MaxFileSizeMB: 100}.MaxFileSize(), ShouldEqual, int64(100*1024*1024))
	})
}
