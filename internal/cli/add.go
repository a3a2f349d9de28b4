package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharathvbcr/liquitask/internal/schema"
	"github.com/bharathvbcr/liquitask/internal/tasks"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		description string
		project     string
		status      string
		priority    string
		due         string
		tags        []string
		estimate    float64
	)

	cmd := &cobra.Command{
		Use:           "add <title>",
		Short:         "Create a task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			draft := tasks.Draft{
				Title:          args[0],
				Description:    description,
				ProjectID:      project,
				Status:         status,
				Priority:       priority,
				Tags:           tags,
				EstimatedHours: estimate,
			}
			if due != "" {
				t, ok := schema.CoerceTime(due)
				if !ok {
					_ = formatter.Error(ErrCodeValidation, fmt.Sprintf("unparsable due date %q", due), nil)
					return NewExitError(ExitCommandError, "bad due date")
				}
				draft.DueDate = &t
			}

			task, err := app.Engine.Create(draft)
			if err != nil {
				_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitFailure, "create task", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(task)
			}
			return formatter.Success(fmt.Sprintf("created %s (%s)", task.JobID, task.ID))
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project id")
	cmd.Flags().StringVar(&status, "status", "", "initial column (defaults to the board's first column)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority id (defaults to medium)")
	cmd.Flags().StringVar(&due, "due", "", "due date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "estimated hours")

	return cmd
}
