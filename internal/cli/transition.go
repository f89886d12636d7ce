package cli

import (
	"github.com/spf13/cobra"
)

func newTransitionCmd(services func(*cobra.Command) (*Services, error)) *cobra.Command {
	var noRetry bool

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Open due calls, close expired ones and evaluate",
		Long: "Runs one call transition tick, the same work the scheduler performs at midnight.\n" +
			"Failures are retried and escalated unless --no-retry is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if noRetry {
				outcome, err := svc.Lifecycle.TransitionDueCalls(cmd.Context())
				if err != nil {
					return err
				}
				outcome.Attempts = 1
				return printJSON(cmd.OutOrStdout(), outcome)
			}

			outcome := svc.Lifecycle.RunScheduledTick(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
				return err
			}
			return outcome.Err
		},
	}

	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "Run a single attempt without retry or escalation")
	return cmd
}
