package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fyrsmithlabs/vault/internal/app"
	"github.com/fyrsmithlabs/vault/internal/audio"
	"github.com/fyrsmithlabs/vault/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the experience (default)",
	Long: `Run the experience full screen. The session resumes at the last stage it
reached; use "vault reset" to start over.

Examples:
  # Resume or start the current session
  vault

  # Use a named session stored in redis
  VAULT_SESSION_BACKEND=redis vault play --session bebe`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx, deps, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	player := audio.NewPlayer(deps.cfg.Audio)
	defer func() {
		if err := player.Close(); err != nil {
			deps.logger.Warn(ctx, "audio close failed", zap.Error(err))
		}
	}()

	return runProgram(ctx, deps, tui.NewScheduler(), player)
}

func runProgram(ctx context.Context, deps *runtimeDeps, sched *tui.Scheduler, player *audio.Player) error {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	pres := tui.NewPresenter(ctx, deps.cfg.Dashboard, sched, player, rng)
	a, err := app.New(ctx, deps.cfg, app.Deps{
		View:      pres,
		Scheduler: sched,
		Store:     deps.store,
		Telemetry: deps.telemetry,
	})
	if err != nil {
		return fmt.Errorf("failed to build stages: %w", err)
	}

	model := tui.NewModel(a, pres, sched)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, runErr := program.Run()

	if err := a.Close(); err != nil {
		deps.logger.Warn(ctx, "session store close failed", zap.Error(err))
	}
	deps.store = nil

	deps.logger.Info(ctx, "vault exiting",
		zap.Int("stage", a.State.Stage),
		zap.Bool("all_viewed", a.State.AllViewed()))
	if err := model.Err(); err != nil {
		deps.logger.Error(ctx, "stage failed to start", zap.Error(err))
	}
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return runErr
}
