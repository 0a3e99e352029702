// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnableCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Add an installed addon to the workspace library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd, flags)
			if err != nil {
				return classifyError(err, flags.verbose)
			}

			changed, err := s.services.Enabled.Enable(cmd.Context(), args[0])
			if err != nil {
				return classifyError(err, s.cfg.Verbose)
			}
			reportToggle(app, args[0], changed, "enabled", "is already enabled")
			return nil
		},
	}
}

func newDisableCommand(app *App, flags *rootFlags) *cobra.Command {
	var allVersions bool

	cmd := &cobra.Command{
		Use:   "disable <name>",
		Short: "Remove an addon from the workspace library",
		Long: `Remove an addon from the workspace library.

Only the entry of the installed version is removed. Entries left behind for
other versions are reported as warnings; pass --all-versions to remove every
entry with that name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd, flags)
			if err != nil {
				return classifyError(err, flags.verbose)
			}

			disable := s.services.Enabled.Disable
			if allVersions {
				disable = s.services.Enabled.DisableAll
			}

			changed, err := disable(cmd.Context(), args[0])
			if err != nil {
				return classifyError(err, s.cfg.Verbose)
			}
			reportToggle(app, args[0], changed, "disabled", "is not enabled")
			return nil
		},
	}

	cmd.Flags().BoolVar(&allVersions, "all-versions", false, "remove the entries of every version")

	return cmd
}

// reportToggle prints the outcome of an enable or disable.
func reportToggle(app *App, name string, changed bool, done, noop string) {
	if changed {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ "+done+" ")+addonNameStyle.Render(name))
		return
	}
	fmt.Fprintln(app.stdout, addonNameStyle.Render(name)+WarningStyle.Render(" "+noop))
}
