package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-admin/internal/apiclient"
	"github.com/unclebandit/campaign-admin/internal/config"
	"github.com/unclebandit/campaign-admin/internal/logging"
	"github.com/unclebandit/campaign-admin/internal/session"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	store  *session.FileStore
	client *apiclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Campaign admin from the terminal",
	Long: `adminctl previews campaign plans, schedules campaign batches and
unlocks edit mode against the campaign backend.

The bearer token is kept in a local session file (see SESSION_FILE).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level)
		if err != nil {
			return err
		}

		path := cfg.SessionFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("locate home dir: %w", err)
			}
			path = filepath.Join(home, ".campaign-admin", "session.json")
		}
		store, err = session.OpenFileStore(path)
		if err != nil {
			return err
		}
		client = apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, store, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(loginCmd, logoutCmd, planCmd, scheduleCmd, unlockCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
