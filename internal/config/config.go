package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	AI      AIConfig      `mapstructure:"ai"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Files   FilesConfig   `mapstructure:"files"`
	App     AppConfig     `mapstructure:"app"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AllowedOrigins 跨域来源，为空时允许任意来源
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// GatewayConfig LLM 网关的缓存、限流与重试策略
type GatewayConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
	CacheEvictCount int           `mapstructure:"cache_evict_count"`
	MinInterval     time.Duration `mapstructure:"min_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	HistoryMessages int           `mapstructure:"history_messages"`
	ContextFiles    int           `mapstructure:"context_files"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig 会话状态持久化配置
type SessionConfig struct {
	Backend     string        `mapstructure:"backend"`      // memory, redis, mongo, file
	TTL         time.Duration `mapstructure:"ttl"`          // 会话过期时间
	Secret      string        `mapstructure:"secret"`       // 会话令牌签名密钥
	TokenExpiry time.Duration `mapstructure:"token_expiry"` // 会话令牌过期时间
	FileDir     string        `mapstructure:"file_dir"`     // file 后端的目录
}

// StorageConfig 上传原件归档存储配置，Type 为空表示不归档
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// FilesConfig 文件处理配置
type FilesConfig struct {
	MaxFileSizeMB   int    `mapstructure:"max_file_size_mb"`
	MaxPerSession   int    `mapstructure:"max_per_session"`
	PreviewLength   int    `mapstructure:"preview_length"`
	OCREnabled      bool   `mapstructure:"ocr_enabled"`
	OCRCommand      string `mapstructure:"ocr_command"`
	OCRLanguage     string `mapstructure:"ocr_language"`
	CJKSegmentation bool   `mapstructure:"cjk_segmentation"`
}

// MaxFileSize 返回字节为单位的上传上限
func (f FilesConfig) MaxFileSize() int64 {
	return int64(f.MaxFileSizeMB) * 1024 * 1024
}

// AppConfig 应用元信息（写入导出文件）
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Version      string `mapstructure:"version"`
	DefaultModel string `mapstructure:"default_model"`
	CleanupDays  int    `mapstructure:"cleanup_days"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	validBackends := map[string]bool{"memory": true, "redis": true, "mongo": true, "file": true}
	if !validBackends[c.Session.Backend] {
		return fmt.Errorf("invalid session backend %q, must be memory/redis/mongo/file", c.Session.Backend)
	}
	if c.Session.Backend == "file" && c.Session.FileDir == "" {
		return errors.New("session.file_dir is required for file backend")
	}

	if c.Files.MaxFileSizeMB <= 0 {
		return errors.New("files.max_file_size_mb must be positive")
	}

	if c.Gateway.MaxRetries < 1 {
		return errors.New("gateway.max_retries must be at least 1")
	}
	if c.Gateway.CacheEvictCount > c.Gateway.CacheMaxEntries {
		return errors.New("gateway.cache_evict_count must not exceed gateway.cache_max_entries")
	}

	return nil
}
