package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bharathvbcr/liquitask/internal/keymap"
)

// NewKeysCommand creates the keys command group.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show and change keyboard bindings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List effective bindings (defaults merged with overrides)",
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

			merged := keymap.Merge(keymap.Defaults(), app.Store.Keybindings())
			if formatter.Format == "json" {
				return formatter.Success(merged)
			}

			actions := make([]string, 0, len(merged))
			for action := range merged {
				actions = append(actions, action)
			}
			sort.Strings(actions)
			for _, action := range actions {
				fmt.Fprintf(formatter.Writer, "%-16s %s\n", action, strings.Join(merged[action], ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "set <action> <chord>...",
		Short:         "Bind an action to one or more chords",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			overrides := app.Store.Keybindings()
			if overrides == nil {
				overrides = map[string][]string{}
			}
			overrides[args[0]] = args[1:]

			merged := keymap.Merge(keymap.Defaults(), overrides)
			if err := keymap.Validate(merged); err != nil {
				_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitFailure, "binding conflict", err)
			}
			if err := app.Store.SetKeybindings(overrides); err != nil {
				_ = formatter.Error(ErrCodeIO, err.Error(), nil)
				return WrapExitError(ExitCommandError, "persist bindings", err)
			}
			return formatter.Success(fmt.Sprintf("bound %s to %s", args[0], strings.Join(args[1:], ", ")))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "reset",
		Short:         "Drop all overrides and return to the defaults",
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

			if err := app.Store.SetKeybindings(map[string][]string{}); err != nil {
				_ = formatter.Error(ErrCodeIO, err.Error(), nil)
				return WrapExitError(ExitCommandError, "persist bindings", err)
			}
			return formatter.Success("bindings reset to defaults")
		},
	})

	return cmd
}
