// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llynx/llynx/internal/config"
)

// newConfigCommand creates the `llynx config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect llynx configuration",
		Long: `Inspect llynx configuration.

Values are read from, in increasing precedence: built-in defaults,
./.llynx.toml (or --config), LLYNX_* environment variables and flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, flags)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlags) error {
	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configFile,
		Overrides:      flags.overrides(cmd),
	})
	if err != nil {
		return classifyError(err, flags.verbose)
	}

	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Source != "" {
		source = cfg.Source
	}
	fmt.Fprintf(app.stdout, "# %s: %s\n", CmdStyle.Render("config file"), source)
	fmt.Fprint(app.stdout, strings.TrimRight(string(out), "\n")+"\n")
	return nil
}
