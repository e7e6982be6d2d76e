package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cogniverse/internal/config"
	"cogniverse/internal/pkg/logger"
)

const envPrefix = "COGNIVERSE"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cogniverse",
	Short: "CogniVerse - conversational AI service",
	Long: `CogniVerse is a conversational AI service built with Eino framework.
It keeps multi-conversation history per session, extracts text from uploaded
documents and images, and routes prompts through a cached, rate limited LLM gateway.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")
}

// loadConfig 读取配置文件、环境变量与命令行参数，初始化日志
// bindings 把配置键映射到 flags 中的参数名
func loadConfig(flags *pflag.FlagSet, bindings map[string]string) (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cogniverse")
	}

	// 环境变量设置
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
	}

	// 反序列化到结构体
	cfg := &config.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	log.Debug().Str("config_file", v.ConfigFileUsed()).Msg("configuration loaded")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// AI (未配置 api_key 时使用本地 mock)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash-exp")
	v.SetDefault("ai.options.temperature", 0.7)
	v.SetDefault("ai.options.max_tokens", 2048)
	v.SetDefault("ai.options.top_p", 1.0)

	// LLM 网关
	v.SetDefault("gateway.cache_ttl", "30m")
	v.SetDefault("gateway.cache_max_entries", 100)
	v.SetDefault("gateway.cache_evict_count", 20)
	v.SetDefault("gateway.min_interval", "100ms")
	v.SetDefault("gateway.max_retries", 3)
	v.SetDefault("gateway.retry_base_delay", "1s")
	v.SetDefault("gateway.history_messages", 6)
	v.SetDefault("gateway.context_files", 3)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "cogniverse")
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("mongo.min_pool_size", 10)

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 会话
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "720h")
	v.SetDefault("session.token_expiry", "720h")
	v.SetDefault("session.file_dir", "./data/sessions")

	// 上传归档 (为空表示不归档)
	v.SetDefault("storage.type", "")

	// 文件处理
	v.SetDefault("files.max_file_size_mb", 100)
	v.SetDefault("files.max_per_session", 10)
	v.SetDefault("files.preview_length", 500)
	v.SetDefault("files.ocr_enabled", true)
	v.SetDefault("files.ocr_command", "tesseract")
	v.SetDefault("files.ocr_language", "eng")
	v.SetDefault("files.cjk_segmentation", false)

	// 应用
	v.SetDefault("app.name", "CogniVerse")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.default_model", "gemini-2.0-flash-exp")
	v.SetDefault("app.cleanup_days", 30)
}
