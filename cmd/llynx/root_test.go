// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/llynx/llynx/internal/config"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version, Commit, BuildDate = "v0.3.0", "abc1234", "2026-01-15T10:00:00Z"

		want := "v0.3.0 (commit: abc1234, built: 2026-01-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestRootFlags_Overrides(t *testing.T) {
	t.Parallel()

	flags := &rootFlags{}
	var got map[string]any
	cmd := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			got = flags.overrides(cmd)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.tree, "tree", "", "")
	cmd.Flags().StringVar(&flags.settings, "settings", "", "")
	cmd.Flags().StringVar(&flags.libraryKey, "library-key", "", "")
	cmd.Flags().CountVarP(&flags.verbose, "verbose", "v", "")
	cmd.SetArgs([]string{"--tree", "addons", "--library-key", "My.library", "-vv"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := map[string]any{"tree": "addons", "library_key": "My.library", "verbose": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("overrides() = %v, want %v", got, want)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	for verbose, want := range map[int]string{0: "error", 1: "warn", 2: "info", 3: "debug", 5: "debug"} {
		logger := newLogger(io.Discard, &config.Config{Verbose: verbose})
		if got := logger.GetLevel().String(); got != want {
			t.Errorf("verbose %d: level = %s, want %s", verbose, got, want)
		}
	}
}
