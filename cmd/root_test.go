package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/pflag"
)

func TestLoadConfig(t *testing.T) {
	Convey("加载配置", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(path, []byte("server:\n  port: 9090\nsession:\n  backend: file\n  file_dir: "+dir+"\n"), 0o644), ShouldBeNil)

		prev := cfgFile
		cfgFile = path
		Reset(func() { cfgFile = prev })

		Convey("配置文件覆盖默认值，未设置的键取默认值", func() {
			cfg, err := loadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), nil)
			So(err, ShouldBeNil)
			So(cfg.Server.Port, ShouldEqual, 9090)
			So(cfg.Session.Backend, ShouldEqual, "file")
			So(cfg.Gateway.CacheTTL, ShouldEqual, 30*time.Minute)
			So(cfg.Gateway.MaxRetries, ShouldEqual, 3)
			So(cfg.Files.MaxFileSizeMB, ShouldEqual, 100)
			So(cfg.App.Name, ShouldEqual, "CogniVerse")
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("环境变量优先于配置文件", func() {
			t.Setenv("COGNIVERSE_SERVER_PORT", "7070")
			t.Setenv("COGNIVERSE_GATEWAY_MAX_RETRIES", "5")
			cfg, err := loadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), nil)
			So(err, ShouldBeNil)
			So(cfg.Server.Port, ShouldEqual, 7070)
			So(cfg.Gateway.MaxRetries, ShouldEqual, 5)
		})

		Convey("显式给出的参数优先级最高", func() {
			t.Setenv("COGNIVERSE_SERVER_PORT", "7070")
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Int("port", 8080, "")
			So(flags.Parse([]string{"--port", "6060"}), ShouldBeNil)

			cfg, err := loadConfig(flags, map[string]string{"server.port": "port"})
			So(err, ShouldBeNil)
			So(cfg.Server.Port, ShouldEqual, 6060)
		})

		Convey("配置文件损坏时报错", func() {
			So(os.WriteFile(path, []byte("server: [unclosed"), 0o644), ShouldBeNil)
			_, err := loadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), nil)
			So(err, ShouldNotBeNil)
		})
	})
}
