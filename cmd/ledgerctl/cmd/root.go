package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/smallbiznis/bizledger/internal/observability/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Work with a bizledger server from the command line",
	Long: `ledgerctl keeps a local copy of a bizledger ledger in sync with the server.

Sign in with "login", refresh the local copy with "pull", replace a catalog
collection with "apply" and pay outstanding balances with "settle".

Environment variables:
  LEDGERCTL_SERVER   - Server base URL (default: http://localhost:8080)
  LEDGERCTL_STATE    - Snapshot file (default: ~/.bizledger/state.snap)
  LOG_LEVEL          - Log level (default: warn)`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("server", envOr("LEDGERCTL_SERVER", "http://localhost:8080"), "bizledger server base URL")
	rootCmd.PersistentFlags().String("state", envOr("LEDGERCTL_STATE", defaultStatePath()), "path of the local snapshot")
	rootCmd.PersistentFlags().String("log-level", envOr("LOG_LEVEL", "warn"), "log level")
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(nil, logger.Config{
		ServiceName: "ledgerctl",
		Version:     version,
		Level:       level,
		Format:      "console",
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "state.snap"
	}
	return filepath.Join(home, ".bizledger", "state.snap")
}
