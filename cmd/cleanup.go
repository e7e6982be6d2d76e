package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cogniverse/internal/server"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old conversations from every session",
	Long: `Iterate every session in the configured backend and delete conversations
that have not been updated for the given number of days. Favorites are kept.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	flags := cleanupCmd.Flags()
	flags.Int("days", 30, "delete conversations not updated within this many days")
	flags.String("session-backend", "memory", "session backend (memory/redis/mongo/file)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), map[string]string{
		"app.cleanup_days": "days",
		"session.backend":  "session-backend",
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.App.CleanupDays < 1 {
		return fmt.Errorf("days must be at least 1, got %d", cfg.App.CleanupDays)
	}
	if cfg.Session.Backend == "memory" {
		log.Warn().Msg("memory session backend holds no persisted sessions, nothing to clean")
	}

	ctx := cmd.Context()
	deps, err := server.BuildDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer deps.Close(ctx)

	result, err := deps.Sessions.CleanupAll(ctx, cfg.App.CleanupDays)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sessions: %d, removed: %d, failed: %d\n",
		result.Sessions, result.Removed, result.Failed)
	return nil
}
