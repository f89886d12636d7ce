package cli

import (
	"fmt"
	"time"

	"scholarship-backend/config"

	"github.com/spf13/cobra"
)

// newScheduleCmd previews upcoming scheduler firings without touching the database.
func newScheduleCmd() *cobra.Command {
	var (
		spec     string
		timezone string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the next transition run times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}
			schedule, err := config.CronParser.Parse(spec)
			if err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", spec, err)
			}

			next := nowFunc().In(loc)
			for i := 0; i < count; i++ {
				next = schedule.Next(next)
				fmt.Fprintln(cmd.OutOrStdout(), next.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", config.DefaultTransitionCron, "Six-field cron expression")
	cmd.Flags().StringVar(&timezone, "timezone", config.DefaultTimezone, "IANA timezone")
	cmd.Flags().IntVar(&count, "count", 3, "Number of run times to print")
	return cmd
}

var nowFunc = time.Now
