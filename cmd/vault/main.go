// Package main implements the vault CLI: the staged greeting in the terminal
// plus a few session maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configPath overrides the config file location
	configPath string
	// sessionFlag selects the persisted session
	sessionFlag string
	// version information
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "A stage-gated greeting for the terminal",
	Long: `vault walks through a gate question, two small games, an intermission
and a tabbed dashboard that ends in a letter. Progress is saved per session,
so rerunning vault resumes at the last stage reached.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runPlay,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "vault by Fyrsmith Labs\n")
		fmt.Fprintf(out, "Version:    %s\n", version)
		fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
		fmt.Fprintf(out, "Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/vault/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "session id (default $VAULT_SESSION or the parent process)")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtimeDeps are the ambient collaborators shared by every command.
type runtimeDeps struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	store     session.Store
	sessionID string
}

// setup loads configuration, starts logging and telemetry and opens the
// session store. The returned context carries the logger and session id.
func setup(ctx context.Context) (context.Context, *runtimeDeps, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load config: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version))
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logCfg, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return ctx, nil, err
	}
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	ctx = logging.WithLogger(ctx, logger)

	id, err := session.ResolveID(sessionFlag)
	if err != nil {
		return ctx, nil, err
	}
	ctx = logging.WithSessionID(ctx, id)

	store, err := session.Open(ctx, cfg.Session, id)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to open session store: %w", err)
	}

	logger.Info(ctx, "vault starting",
		zap.String("version", version),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("telemetry", tel.IsEnabled()))

	return ctx, &runtimeDeps{cfg: cfg, logger: logger, telemetry: tel, store: store, sessionID: id}, nil
}

// Close releases the store unless the app already did, flushes telemetry and closes the log file.
func (d *runtimeDeps) Close(ctx context.Context) {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn(ctx, "session store close failed", zap.Error(err))
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.telemetry.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
	}
	_ = d.logger.Close()
}
