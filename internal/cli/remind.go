package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharathvbcr/liquitask/internal/notify"
)

// NewRemindCommand creates the remind command: a one-shot overdue scan.
func NewRemindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remind",
		Short:         "List tasks past their due date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			var flagged []notify.Reminder
			sink := notify.SinkFunc(func(r notify.Reminder, reason string) {
				flagged = append(flagged, r)
			})
			scheduler := notify.NewScheduler(sink, app.Log)

			var reminders []notify.Reminder
			for _, t := range app.Store.Tasks() {
				reminders = append(reminders, notify.Reminder{
					ID:          t.ID,
					Title:       t.Title,
					DueDate:     t.DueDate,
					Status:      t.Status,
					CompletedAt: t.CompletedAt,
				})
			}
			overdue := scheduler.CheckOverdue(reminders)

			if formatter.Format == "json" {
				return formatter.Success(map[string]any{"overdue": overdue})
			}
			if len(flagged) == 0 {
				return formatter.Success("nothing overdue")
			}
			for _, r := range flagged {
				fmt.Fprintf(formatter.Writer, "%s  %s (due %s)\n", r.ID, r.Title, r.DueDate.Format("2006-01-02"))
			}
			return nil
		},
	}
}
