// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"cmp"
	"slices"
	"strings"
)

type (
	// Addon is a named, versioned package of Lua type definitions.
	Addon struct {
		// Name is the rock name (e.g. "say").
		Name string
		// Version is the rock version string (e.g. "1.4.1-3"). It is opaque.
		Version string
		// Location is a relative path to the addon on disk. It is empty for
		// addons known only from the online registry.
		Location string
	}

	// Key is the identity of an addon. Two addons with the same Key are the
	// same addon regardless of where they live.
	Key struct {
		Name    string
		Version string
	}

	// Group is a run of addons sharing a name, in version order.
	Group struct {
		Name     string
		Versions []string
	}
)

// Key returns the identity of the addon.
func (a Addon) Key() Key {
	return Key{Name: a.Name, Version: a.Version}
}

// HasLocation reports whether the addon is known to exist on disk.
func (a Addon) HasLocation() bool {
	return a.Location != ""
}

// String renders the addon as name@version.
func (a Addon) String() string {
	return a.Name + "@" + a.Version
}

// Same reports whether a and b are the same addon.
func Same(a, b Addon) bool {
	return a.Key() == b.Key()
}

// Compare orders addons by name, then by version, both lexicographically.
func Compare(a, b Addon) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Version, b.Version)
}

// Sort sorts addons in place by Compare.
func Sort(addons []Addon) {
	slices.SortStableFunc(addons, Compare)
}

// Filter returns the addons whose name contains substr. An empty substr
// keeps everything.
func Filter(addons []Addon, substr string) []Addon {
	if substr == "" {
		return addons
	}
	out := make([]Addon, 0, len(addons))
	for _, a := range addons {
		if strings.Contains(a.Name, substr) {
			out = append(out, a)
		}
	}
	return out
}

// Grouped sorts a copy of addons and folds consecutive equal names together.
func Grouped(addons []Addon) []Group {
	sorted := slices.Clone(addons)
	Sort(sorted)

	var groups []Group
	for _, a := range sorted {
		if n := len(groups); n > 0 && groups[n-1].Name == a.Name {
			groups[n-1].Versions = append(groups[n-1].Versions, a.Version)
			continue
		}
		groups = append(groups, Group{Name: a.Name, Versions: []string{a.Version}})
	}
	return groups
}
