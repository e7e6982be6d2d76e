package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	// swagger 文档注册
	_ "cogniverse/docs"
	"cogniverse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the CogniVerse API server with the specified configuration.`,
	RunE:  runServe,
}

// serveBindings 配置键与 serve 参数的对应关系
var serveBindings = map[string]string{
	"server.host":     "host",
	"server.port":     "port",
	"server.mode":     "mode",
	"ai.provider":     "ai-provider",
	"ai.model":        "ai-model",
	"ai.api_key":      "ai-api-key",
	"session.backend": "session-backend",
	"log.level":       "log-level",
	"log.format":      "log-format",
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()

	// Server flags
	flags.StringP("host", "H", "0.0.0.0", "server host")
	flags.IntP("port", "p", 8080, "server port")
	flags.String("mode", "release", "server mode (debug/release/test)")

	// AI flags
	flags.String("ai-provider", "gemini", "AI provider (gemini/openai/azure/ark)")
	flags.String("ai-model", "gemini-2.0-flash-exp", "AI model name")
	flags.String("ai-api-key", "", "AI API key, mock mode when empty (recommend using env: COGNIVERSE_AI_API_KEY)")

	// Session flags
	flags.String("session-backend", "memory", "session backend (memory/redis/mongo/file)")

	// Log flags
	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), serveBindings)
	if err != nil {
		return err
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := server.BuildDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}

	// Create server
	srv := server.New(cfg, deps)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("mode", cfg.Server.Mode).
		Str("session_backend", cfg.Session.Backend).
		Str("default_model", deps.Gateway.DefaultModel()).
		Msg("starting server")

	return srv.Run(ctx, addr)
}
