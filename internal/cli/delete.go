package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "delete <task-id>",
		Short:         "Delete a task",
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

			deleted, err := app.Engine.Delete(args[0], yes)
			if err != nil {
				_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
				return WrapExitError(ExitCommandError, "delete task", err)
			}
			if !deleted {
				return formatter.Success("deletion cancelled")
			}
			return formatter.Success(fmt.Sprintf("deleted %s", args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "undo",
		Short:         "Reverse the most recent task mutation",
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

			undone, err := app.Engine.Undo()
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitFailure, "undo", err)
			}
			if formatter.Format == "json" {
				return formatter.Success(map[string]any{"kind": undone.Kind, "task": undone.Task})
			}
			return formatter.Success(fmt.Sprintf("undid %s of %s", undone.Kind, undone.Task.JobID))
		},
	}
}
