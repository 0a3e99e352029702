// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llynx/llynx/pkg/addon"
)

func newInstallCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "install <name> [version]",
		Short: "Install an addon into the rocks tree",
		Long: `Install an addon from the addon server into the local rocks tree.

Installing does not enable the addon; run 'llynx enable <name>' afterwards.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, app, flags, addonArgs(args))
		},
	}
}

func newRemoveCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name> [version]",
		Short: "Remove an addon from the rocks tree",
		Long: `Remove an addon from the local rocks tree.

When disable_before_remove is set in the configuration the addon is first
removed from the editor settings, so no dangling library entry remains.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, app, flags, addonArgs(args))
		},
	}
}

// addonArgs turns "<name> [version]" arguments into an addon key.
func addonArgs(args []string) addon.Key {
	key := addon.Key{Name: args[0]}
	if len(args) > 1 {
		key.Version = args[1]
	}
	return key
}

func runInstall(cmd *cobra.Command, app *App, flags *rootFlags, key addon.Key) error {
	s, err := app.open(cmd, flags)
	if err != nil {
		return classifyError(err, flags.verbose)
	}

	s.logger.Info("installing addon", "name", key.Name, "version", key.Version, "tree", s.cfg.Tree)
	if err := s.services.Registry.Install(cmd.Context(), key.Name, key.Version, app.stdout, app.stderr); err != nil {
		return classifyError(fmt.Errorf("install '%s': %w", key.Name, err), s.cfg.Verbose)
	}

	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ installed ")+addonNameStyle.Render(key.Name))
	return nil
}

func runRemove(cmd *cobra.Command, app *App, flags *rootFlags, key addon.Key) error {
	s, err := app.open(cmd, flags)
	if err != nil {
		return classifyError(err, flags.verbose)
	}

	if s.cfg.DisableBeforeRemove {
		if err := disableBeforeRemove(cmd.Context(), app, s, key.Name); err != nil {
			return classifyError(err, s.cfg.Verbose)
		}
	}

	s.logger.Info("removing addon", "name", key.Name, "version", key.Version, "tree", s.cfg.Tree)
	if err := s.services.Registry.Remove(cmd.Context(), key.Name, key.Version, app.stdout, app.stderr); err != nil {
		return classifyError(fmt.Errorf("remove '%s': %w", key.Name, err), s.cfg.Verbose)
	}

	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ removed ")+addonNameStyle.Render(key.Name))
	return nil
}

// disableBeforeRemove removes name from the library list when it is enabled.
// The settings file is left alone otherwise.
func disableBeforeRemove(ctx context.Context, app *App, s *session, name string) error {
	enabled, err := s.services.Enabled.IsEnabled(ctx, name)
	if err != nil || !enabled {
		return err
	}
	s.logger.Debug("disabling addon before removal", "name", name)

	changed, err := s.services.Enabled.Disable(ctx, name)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ disabled ")+addonNameStyle.Render(name))
	}
	return nil
}
