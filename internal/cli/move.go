package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:           "move <task-id> <status>",
		Short:         "Move a task to another column",
		Long:          "Move a task to another column, optionally changing its priority. A move is rejected when an unresolved blocked-by dependency holds the task in place.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Engine.Move(args[0], args[1], priority)
			if err != nil {
				_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
				return WrapExitError(ExitCommandError, "move task", err)
			}

			if result.Blocked {
				_ = formatter.Error(ErrCodeBlocked,
					fmt.Sprintf("task %s is blocked by %s", args[0], result.BlockedBy),
					map[string]string{"blockedBy": result.BlockedBy})
				return NewExitError(ExitFailure, "move blocked by dependency")
			}

			if formatter.Format == "json" {
				return formatter.Success(result.Task)
			}
			return formatter.Success(fmt.Sprintf("moved %s to %s", result.Task.JobID, result.Task.Status))
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "also set the task's priority")

	return cmd
}
