package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/stage"
	"github.com/spf13/cobra"
)

// resetNew prints a fresh session id after clearing
var resetNew bool

func init() {
	resetCmd.Flags().BoolVar(&resetNew, "new", false, "also print a fresh session id to start a separate session")
}

// statusCmd shows the persisted stage
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stage the session will resume at",
	Long: `Show the persisted stage of a session without starting the experience.

Examples:
  # Current session
  vault status

  # A named session
  vault status --session bebe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close(ctx)
		return printStatus(ctx, cmd.OutOrStdout(), deps.store, deps.sessionID, deps.cfg.Session.Backend)
	},
}

// resetCmd clears the persisted stage
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the persisted stage so the next run starts at the gate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close(ctx)
		return resetSession(ctx, cmd.OutOrStdout(), deps.store, deps.sessionID, resetNew)
	},
}

func printStatus(ctx context.Context, w io.Writer, store session.Store, id, backend string) error {
	n, ok, err := store.LoadStage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stage: %w", err)
	}
	fmt.Fprintf(w, "Session:  %s (%s)\n", id, backend)
	if !ok {
		fmt.Fprintf(w, "Stage:    not started (resumes at %d/%d %s)\n",
			session.FirstStage, session.LastStage, stage.Name(session.FirstStage))
		return nil
	}
	fmt.Fprintf(w, "Stage:    %d/%d %s\n", n, session.LastStage, stage.Name(n))
	return nil
}

func resetSession(ctx context.Context, w io.Writer, store session.Store, id string, fresh bool) error {
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", id, err)
	}
	logging.FromContext(ctx).Info(ctx, "session reset")
	fmt.Fprintf(w, "Session %s reset; the next run starts at the gate.\n", id)
	if fresh {
		fmt.Fprintf(w, "New session id: %s\n", session.NewID())
	}
	return nil
}
