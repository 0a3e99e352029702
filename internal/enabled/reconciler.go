// SPDX-License-Identifier: MPL-2.0

package enabled

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/llynx/llynx/internal/settings"
	"github.com/llynx/llynx/pkg/addon"
)

var (
	// ErrNoSettings is returned by New when no settings file is given.
	ErrNoSettings = errors.New("settings file is required")
	// ErrNoInstalled is returned by New when no installed registry is given.
	ErrNoInstalled = errors.New("installed registry is required")
)

type (
	// InstalledLookup finds installed addons. Each result's Location is the
	// addon's installation directory. An empty version matches any version.
	InstalledLookup interface {
		Lookup(ctx context.Context, name, version string) ([]addon.Addon, error)
	}

	// Options configures a Reconciler.
	Options struct {
		// Tree is the rocks tree directory addons are installed into.
		Tree string
		// Settings is the settings file holding the library list.
		Settings *settings.File
		// Installed resolves names to installed addons.
		Installed InstalledLookup
		// Logger receives progress and warnings. Nil discards them.
		Logger *log.Logger
	}

	// Reconciler lists, enables and disables addons in one settings file for
	// one rocks tree. It performs no locking of its own beyond what
	// settings.File.Update provides.
	Reconciler struct {
		tree      string
		settings  *settings.File
		installed InstalledLookup
		logger    *log.Logger
	}
)

// New creates a Reconciler from opts.
func New(opts Options) (*Reconciler, error) {
	if opts.Settings == nil {
		return nil, ErrNoSettings
	}
	if opts.Installed == nil {
		return nil, ErrNoInstalled
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler{
		tree:      opts.Tree,
		settings:  opts.Settings,
		installed: opts.Installed,
		logger:    logger,
	}, nil
}

// List returns the enabled addons whose name contains filter. A missing or
// empty settings file, or one without the library key, yields no addons.
func (r *Reconciler) List(ctx context.Context, filter string) ([]addon.Addon, error) {
	library, err := r.readLibrary()
	if err != nil {
		return nil, err
	}
	addons, err := ListEnabled(library, r.tree, filter)
	if err != nil {
		return nil, fmt.Errorf("decode %s entries in %s: %w", r.settings.Key(), r.settings.Path(), err)
	}
	return addons, nil
}

// IsEnabled reports whether an addon called name is enabled.
func (r *Reconciler) IsEnabled(_ context.Context, name string) (bool, error) {
	library, err := r.readLibrary()
	if err != nil {
		return false, err
	}
	addons, err := EnabledNamed(library, r.tree, name)
	if err != nil {
		return false, fmt.Errorf("decode %s entries in %s: %w", r.settings.Key(), r.settings.Path(), err)
	}
	return len(addons) > 0, nil
}

// Enable appends the installed version of name to the library list. It
// returns false when name was already enabled.
func (r *Reconciler) Enable(ctx context.Context, name string) (bool, error) {
	written, err := r.settings.Update(func(library []string) ([]string, bool, error) {
		return EnableIn(library, r.tree, name, r.resolver(ctx))
	})
	if err != nil {
		return false, fmt.Errorf("enable '%s': %w", name, err)
	}

	if !written {
		r.logger.Info("addon is already enabled", "addon", name)
		return false, nil
	}
	r.logger.Info("enabled addon", "addon", name, "settings", r.settings.Path())
	return true, nil
}

// Disable removes the installed version of name from the library list. It
// returns false when nothing was removed. Entries for other versions of the
// same name are kept and logged.
func (r *Reconciler) Disable(ctx context.Context, name string) (bool, error) {
	var stale []addon.Addon
	written, err := r.settings.Update(func(library []string) ([]string, bool, error) {
		var entry string
		resolve := func(n string) (addon.Addon, error) {
			a, err := r.resolve(ctx, n)
			if err == nil {
				entry, _ = addon.Encode(a.Location)
			}
			return a, err
		}

		updated, changed, err := DisableIn(library, r.tree, name, resolve)
		if err != nil {
			return nil, false, err
		}
		if entry != "" {
			stale = Stale(updated, r.tree, name, entry)
		}
		return updated, changed, nil
	})
	if err != nil {
		return false, fmt.Errorf("disable '%s': %w", name, err)
	}

	for _, a := range stale {
		r.logger.Warn("entry for another version is still enabled", "addon", a.Name, "version", a.Version, "entry", a.Location)
	}
	if !written {
		r.logger.Info("addon is already disabled", "addon", name)
		return false, nil
	}
	r.logger.Info("disabled addon", "addon", name, "settings", r.settings.Path())
	return true, nil
}

// DisableAll removes every entry for name regardless of version.
func (r *Reconciler) DisableAll(ctx context.Context, name string) (bool, error) {
	written, err := r.settings.Update(func(library []string) ([]string, bool, error) {
		return DisableAllIn(library, r.tree, name)
	})
	if err != nil {
		return false, fmt.Errorf("disable '%s': %w", name, err)
	}
	if !written {
		r.logger.Info("addon is already disabled", "addon", name)
	}
	return written, nil
}

// readLibrary reads the library list, logging why it is empty when the
// file, its content or the key is missing.
func (r *Reconciler) readLibrary() ([]string, error) {
	doc, state, err := r.settings.Read()
	if err != nil {
		return nil, err
	}

	switch state {
	case settings.StateMissing:
		r.logger.Warn("settings file not found, assuming no addons are enabled", "path", r.settings.Path())
		return nil, nil
	case settings.StateEmpty:
		r.logger.Warn("settings file is empty, assuming no addons are enabled", "path", r.settings.Path())
		return nil, nil
	}

	library, ok := doc.Library()
	if !ok {
		r.logger.Warn("library key not found, assuming no addons are enabled", "key", r.settings.Key(), "path", r.settings.Path())
		return nil, nil
	}
	return library, nil
}

func (r *Reconciler) resolver(ctx context.Context) ResolveFunc {
	return func(name string) (addon.Addon, error) {
		return r.resolve(ctx, name)
	}
}

// resolve returns the first installed addon whose name is exactly name.
func (r *Reconciler) resolve(ctx context.Context, name string) (addon.Addon, error) {
	installed, err := r.installed.Lookup(ctx, name, "")
	if err != nil {
		return addon.Addon{}, fmt.Errorf("look up installed addon '%s': %w", name, err)
	}
	for _, a := range installed {
		if a.Name == name {
			r.logger.Debug("resolved installed addon", "addon", a.String(), "location", a.Location)
			return a, nil
		}
	}
	return addon.Addon{}, &NotInstalledError{Name: name}
}
