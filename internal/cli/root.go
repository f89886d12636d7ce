// Package cli implements scholarshipctl, the operator tool for running call
// transitions and evaluations by hand.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"scholarship-backend/config"
	"scholarship-backend/internal/app"
	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/logger"

	"github.com/spf13/cobra"
)

// Services is the slice of the application the CLI drives.
type Services struct {
	Config    *config.Config
	Calls     domain.CallRepository
	Ranking   domain.RankingUsecase
	Lifecycle domain.LifecycleUsecase
	Close     func()
}

// Opener builds Services for one command invocation.
type Opener func(ctx context.Context, logger *slog.Logger) (*Services, error)

var flagLogLevel string

// NewRootCmd creates the root command backed by the real database.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(openApp)
}

// NewRootCmdWith creates the root command with a custom service opener.
func NewRootCmdWith(open Opener) *cobra.Command {
	var log *slog.Logger

	root := &cobra.Command{
		Use:   "scholarshipctl",
		Short: "Operate scholarship calls",
		Long:  "scholarshipctl runs call transitions and applicant evaluations outside the API scheduler.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logger.ParseLevel(flagLogLevel),
			}))
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	services := func(cmd *cobra.Command) (*Services, error) {
		return open(cmd.Context(), log)
	}

	root.AddCommand(
		newTransitionCmd(services),
		newEvaluateCmd(services),
		newScheduleCmd(),
	)

	return root
}

func openApp(ctx context.Context, log *slog.Logger) (*Services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Services{
		Config:    cfg,
		Calls:     a.Calls,
		Ranking:   a.RankingUC,
		Lifecycle: a.LifecycleUC,
		Close:     a.Close,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

