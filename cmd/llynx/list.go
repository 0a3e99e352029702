// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llynx/llynx/pkg/addon"
)

const (
	sourceOnline    = "online"
	sourceInstalled = "installed"
	sourceEnabled   = "enabled"

	msgNoAddons = "no addons found matching criteria"
)

var listSources = []string{sourceOnline, sourceInstalled, sourceEnabled}

func newListCommand(app *App, flags *rootFlags) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [online|installed|enabled]",
		Short: "List addons from one registry",
		Long: `List addons available on the server (online), installed in the rocks
tree (installed, the default) or enabled in the editor settings (enabled).

Addons are grouped by name with one indented line per version.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: listSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := sourceInstalled
			if len(args) == 1 {
				source = args[0]
			}
			return runList(cmd, app, flags, source, filter)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only list addons whose name contains this text")

	return cmd
}

func runList(cmd *cobra.Command, app *App, flags *rootFlags, source, filter string) error {
	s, err := app.open(cmd, flags)
	if err != nil {
		return classifyError(err, flags.verbose)
	}

	addons, err := fetchAddons(cmd.Context(), s, source, filter)
	if err != nil {
		return classifyError(err, s.cfg.Verbose)
	}

	if len(addons) == 0 {
		s.logger.Error(msgNoAddons, "source", source, "filter", filter)
		return nil
	}

	writeGrouped(app.stdout, addon.Grouped(addons))
	return nil
}

// fetchAddons queries the registry named by source.
func fetchAddons(ctx context.Context, s *session, source, filter string) ([]addon.Addon, error) {
	switch source {
	case sourceOnline:
		return s.services.Registry.Online(ctx, filter)
	case sourceEnabled:
		return s.services.Enabled.List(ctx, filter)
	default:
		return s.services.Registry.Installed(ctx, filter)
	}
}

// writeGrouped prints each name followed by its tab-indented versions, with a
// blank line between names.
func writeGrouped(w io.Writer, groups []addon.Group) {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(addonNameStyle.Render(g.Name))
		b.WriteString("\n")
		for _, v := range g.Versions {
			b.WriteString("\t")
			b.WriteString(addonVersionStyle.Render(v))
			b.WriteString("\n")
		}
	}
	fmt.Fprint(w, b.String())
}
