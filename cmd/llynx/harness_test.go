// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/llynx/llynx/internal/config"
	"github.com/llynx/llynx/internal/enabled"
	"github.com/llynx/llynx/internal/settings"
	"github.com/llynx/llynx/pkg/addon"
)

type (
	// fsConfigProvider loads real configuration from an in-memory filesystem.
	fsConfigProvider struct {
		fs afero.Fs
	}

	// fakeRegistry is an in-memory LuaRocks stand-in.
	fakeRegistry struct {
		online    []addon.Addon
		installed []addon.Addon
		installs  []addon.Key
		removes   []addon.Key
		err       error
	}

	// harness runs the CLI against an in-memory filesystem and registry.
	harness struct {
		fs       afero.Fs
		registry *fakeRegistry
	}
)

func (p *fsConfigProvider) Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error) {
	opts.Fs = p.fs
	return config.NewProvider().Load(ctx, opts)
}

func (r *fakeRegistry) Online(_ context.Context, filter string) ([]addon.Addon, error) {
	if r.err != nil {
		return nil, r.err
	}
	return addon.Filter(r.online, filter), nil
}

func (r *fakeRegistry) Installed(_ context.Context, filter string) ([]addon.Addon, error) {
	if r.err != nil {
		return nil, r.err
	}
	return addon.Filter(r.installed, filter), nil
}

func (r *fakeRegistry) Lookup(_ context.Context, name, version string) ([]addon.Addon, error) {
	if r.err != nil {
		return nil, r.err
	}
	var found []addon.Addon
	for _, a := range r.installed {
		if a.Name == name && (version == "" || a.Version == version) {
			found = append(found, a)
		}
	}
	return found, nil
}

func (r *fakeRegistry) Install(_ context.Context, name, version string, stdout, _ io.Writer) error {
	if r.err != nil {
		return r.err
	}
	r.installs = append(r.installs, addon.Key{Name: name, Version: version})
	fmt.Fprintf(stdout, "%s is now installed\n", name)
	return nil
}

func (r *fakeRegistry) Remove(_ context.Context, name, version string, stdout, _ io.Writer) error {
	if r.err != nil {
		return r.err
	}
	r.removes = append(r.removes, addon.Key{Name: name, Version: version})
	r.installed = slices.DeleteFunc(r.installed, func(a addon.Addon) bool { return a.Name == name })
	fmt.Fprintf(stdout, "%s was removed\n", name)
	return nil
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		fs: afero.NewMemMapFs(),
		registry: &fakeRegistry{
			online: []addon.Addon{
				{Name: "love2d", Version: "11.4-1"},
				{Name: "busted", Version: "2.2.0-1"},
			},
			installed: []addon.Addon{
				{Name: "busted", Version: "2.0-1", Location: ".lls_addons/lib/luarocks/rocks-5.1/busted/2.0-1"},
				{Name: "love2d", Version: "11.4-1", Location: ".lls_addons/lib/luarocks/rocks-5.1/love2d/11.4-1"},
			},
		},
	}
}

// services builds a real reconciler over the harness filesystem.
func (h *harness) services(cfg *config.Config, logger *log.Logger) (*Services, error) {
	reconciler, err := enabled.New(enabled.Options{
		Tree:      cfg.Tree,
		Settings:  settings.NewFile(cfg.Settings, cfg.LibraryKey, settings.WithFs(h.fs)),
		Installed: h.registry,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return &Services{Registry: h.registry, Enabled: reconciler}, nil
}

func (h *harness) writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := afero.WriteFile(h.fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (h *harness) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// run executes the root command with args and returns its output. Errors
// are reported to stderr the way Execute reports them.
func (h *harness) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app, err := NewApp(Dependencies{
		Config:   &fsConfigProvider{fs: h.fs},
		Services: h.services,
		Stdout:   &out,
		Stderr:   &errOut,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	if err != nil {
		reportError(&errOut, err)
	}
	return out.String(), errOut.String(), err
}
