// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/llynx/llynx/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	luarocks   string
	tree       string
	settings   string
	server     string
	libraryKey string
	verbose    int
}

// overrides returns the configuration keys set explicitly on the command line.
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	set := func(flag, key string, value any) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}

	set("luarocks", "luarocks", f.luarocks)
	set("tree", "tree", f.tree)
	set("settings", "settings", f.settings)
	set("server", "server", f.server)
	set("library-key", "library_key", f.libraryKey)
	set("verbose", "verbose", f.verbose)

	return overrides
}

// NewRootCommand builds the llynx command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "llynx",
		Short: "Manage Lua language server addons",
		Long: TitleStyle.Render("llynx") + SubtitleStyle.Render(" - Lua language server addon manager") + `

llynx installs Lua language server addons from LuaRocks into a local rocks
tree and enables them by editing the workspace library list in your editor
settings.

` + SubtitleStyle.Render("Examples:") + `
  llynx list online         List addons available on the server
  llynx install love2d      Install an addon into the local tree
  llynx enable love2d       Add the addon to the workspace library
  llynx list enabled        List the addons the language server loads
  llynx config show         Show the effective configuration`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file (default is ./.llynx.toml)")
	pf.StringVarP(&flags.luarocks, "luarocks", "l", "", "LuaRocks executable (default \"luarocks\")")
	pf.StringVarP(&flags.tree, "tree", "t", "", "rocks tree addons are installed into (default \".lls_addons\")")
	pf.StringVar(&flags.settings, "settings", "", "editor settings file (default \".vscode/settings.json\")")
	pf.StringVar(&flags.server, "server", "", "addon server searched by 'list online'")
	pf.StringVar(&flags.libraryKey, "library-key", "", "settings key holding the library list (default \"Lua.workspace.library\")")
	pf.CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity (-v warn, -vv info, -vvv debug)")

	rootCmd.AddCommand(
		newListCommand(app, flags),
		newInstallCommand(app, flags),
		newRemoveCommand(app, flags),
		newEnableCommand(app, flags),
		newDisableCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and exits with the resulting status.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError renders a ServiceError found in err's chain to stderr and
// returns the process exit code for err.
func reportError(stderr io.Writer, err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(stderr, svcErr)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// formatErrorForDisplay formats an error for user display, using the
// ActionableError format when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
