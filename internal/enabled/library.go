// SPDX-License-Identifier: MPL-2.0

package enabled

import (
	"fmt"
	"slices"

	"github.com/llynx/llynx/internal/aggregate"
	"github.com/llynx/llynx/pkg/addon"
)

// ResolveFunc returns the installed addon called name. Its Location is the
// installation directory, not yet suffixed with "types".
type ResolveFunc func(name string) (addon.Addon, error)

// ListEnabled decodes the addon entries of library for tree and keeps those
// whose name contains filter. Entries that are not addon entries are skipped.
// Decode failures are aggregated: one bad entry is returned as is, several
// are reported together.
func ListEnabled(library []string, tree, filter string) ([]addon.Addon, error) {
	entries := make([]string, 0, len(library))
	for _, entry := range library {
		if addon.Accepts(entry, tree) {
			entries = append(entries, entry)
		}
	}

	addons, err := aggregate.CollectFunc(entries, addon.Decode)
	if err != nil {
		return nil, err
	}
	return addon.Filter(addons, filter), nil
}

// EnabledNamed returns the enabled addons of library called exactly name.
// Unlike ListEnabled it also decodes rooted entries below tree (see
// addon.Within), so entries written for an absolute tree are recognised.
func EnabledNamed(library []string, tree, name string) ([]addon.Addon, error) {
	entries := make([]string, 0, len(library))
	for _, entry := range library {
		if addon.Within(entry, tree) {
			entries = append(entries, entry)
		}
	}

	addons, err := aggregate.CollectFunc(entries, addon.Decode)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(addons, func(a addon.Addon) bool {
		return a.Name != name
	}), nil
}

// EnableIn returns library with the entry for name appended at the end. When
// an addon called name is already enabled, or its entry is already present,
// the library is returned unchanged and changed is false. Existing entries
// keep their order.
func EnableIn(library []string, tree, name string, resolve ResolveFunc) (updated []string, changed bool, err error) {
	enabled, err := EnabledNamed(library, tree, name)
	if err != nil {
		return nil, false, err
	}
	if len(enabled) > 0 {
		return library, false, nil
	}

	entry, err := resolveEntry(name, resolve)
	if err != nil {
		return nil, false, err
	}
	if slices.Contains(library, entry) {
		return library, false, nil
	}

	updated = append(slices.Clone(library), entry)
	return updated, true, nil
}

// DisableIn returns library without the entry of the installed version of
// name. Every entry equal to that exact path is removed; entries for other
// versions of the same name are kept. When no enabled addon is called name
// the library is returned unchanged without consulting resolve.
func DisableIn(library []string, tree, name string, resolve ResolveFunc) (updated []string, changed bool, err error) {
	enabled, err := EnabledNamed(library, tree, name)
	if err != nil {
		return nil, false, err
	}
	if len(enabled) == 0 {
		return library, false, nil
	}

	entry, err := resolveEntry(name, resolve)
	if err != nil {
		return nil, false, err
	}

	updated = slices.DeleteFunc(slices.Clone(library), func(e string) bool {
		return e == entry
	})
	return updated, len(updated) != len(library), nil
}

// DisableAllIn returns library without any addon entry called name,
// whichever version it points at. The installed registry is not consulted.
func DisableAllIn(library []string, tree, name string) (updated []string, changed bool, err error) {
	updated = make([]string, 0, len(library))
	var failed []aggregate.Result[struct{}]
	for _, entry := range library {
		if !addon.Within(entry, tree) {
			updated = append(updated, entry)
			continue
		}
		a, err := addon.Decode(entry)
		if err != nil {
			failed = append(failed, aggregate.Fail[struct{}](err))
			continue
		}
		if a.Name != name {
			updated = append(updated, entry)
		}
	}
	if _, err := aggregate.Collect(failed); err != nil {
		return nil, false, err
	}
	return updated, len(updated) != len(library), nil
}

// Stale returns the enabled entries called name other than entry. They are
// left behind by DisableIn when several versions were enabled.
func Stale(library []string, tree, name, entry string) []addon.Addon {
	enabled, err := EnabledNamed(library, tree, name)
	if err != nil {
		return nil
	}
	var stale []addon.Addon
	for _, a := range enabled {
		if a.Location != entry {
			stale = append(stale, a)
		}
	}
	return stale
}

func resolveEntry(name string, resolve ResolveFunc) (string, error) {
	installed, err := resolve(name)
	if err != nil {
		return "", err
	}
	if !installed.HasLocation() {
		return "", fmt.Errorf("addon '%s': %w", name, ErrNoLocation)
	}
	return addon.Encode(installed.Location)
}

