package cli

import (
	"errors"
	"fmt"

	"scholarship-backend/internal/domain"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(services func(*cobra.Command) (*Services, error)) *cobra.Command {
	var callID int64

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score and rank applicants of a closed call",
		Long: "Without --call-id, evaluates the most recently closed call of the current year.\n" +
			"Re-running is safe: scores and acceptance flags are recomputed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := cmd.Context()
			var result domain.EvaluationResult
			if callID > 0 {
				call, err := svc.Calls.FindByID(ctx, callID)
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("call %d not found", callID)
				}
				if err != nil {
					return err
				}
				result, err = svc.Ranking.EvaluateCall(ctx, call)
				if err != nil {
					return err
				}
			} else {
				result, err = svc.Ranking.Evaluate(ctx)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Int64Var(&callID, "call-id", 0, "Evaluate this call instead of the latest closed one")
	return cmd
}
