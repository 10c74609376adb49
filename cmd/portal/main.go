// Package main is the portal's command line: the HTTP server plus the
// offline ranking and sweep commands that share its wiring.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/config"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Kandukur community opportunity portal",
	Long: "Serves the portal API (opportunities board, profiles, admin content) and runs " +
		"the maintenance jobs behind it. Configuration comes from the environment or a .env file.",
	SilenceUsage: true,
}

var (
	verbose bool
	dbPath  string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at DEBUG level")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openServer loads the config, applies flag overrides, makes sure the
// database directory exists and builds the full dependency graph.
func openServer(ctx context.Context, logger *slog.Logger, override func(*config.Config)) (*server.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if override != nil {
		override(cfg)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	return server.Open(ctx, cfg, logger)
}
