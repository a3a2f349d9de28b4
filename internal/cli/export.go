package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bharathvbcr/liquitask/internal/schema"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Export the full board as JSON",
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

			data, err := app.Store.ExportData()
			if err != nil {
				_ = formatter.Error(ErrCodeIO, err.Error(), nil)
				return WrapExitError(ExitCommandError, "export", err)
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				_ = formatter.Error(ErrCodeIO, err.Error(), nil)
				return WrapExitError(ExitCommandError, "write export", err)
			}
			return formatter.Success(fmt.Sprintf("exported to %s", out))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import <file>",
		Short:         "Validate and import a board export",
		Long:          "Validate an exported JSON document and apply it to the store. Validation failures list every offending field path; nothing is applied on failure.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			raw, err := os.ReadFile(args[0])
			if err != nil {
				_ = formatter.Error(ErrCodeIO, err.Error(), nil)
				return WrapExitError(ExitCommandError, "read import file", err)
			}

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Store.ImportData(raw); err != nil {
				var verr *schema.ValidationError
				if errors.As(err, &verr) {
					_ = formatter.Error(ErrCodeValidation, "import rejected", verr.Fields)
					return NewExitError(ExitFailure, verr.Error())
				}
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "import", err)
			}
			return formatter.Success(fmt.Sprintf("imported %s", args[0]))
		},
	}
}
