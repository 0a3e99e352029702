// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// TypesDir is the final path segment of every enabled addon entry.
	TypesDir = "types"

	// minAddonSegments is the number of segments an entry needs below the
	// tree matcher: <name>/<version>/types.
	minAddonSegments = 3
)

// ErrNotUTF8 is returned when a path segment cannot be represented as text.
var ErrNotUTF8 = errors.New("path segment is not valid UTF-8")

// DecodeError is returned when an accepted library entry cannot be turned
// into an Addon. It wraps the underlying reason for errors.Is.
type DecodeError struct {
	// Path is the library entry as it appears in the settings file.
	Path string
	// Segment names the directory that failed ("name" or "version").
	Segment string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("library entry %q: %s directory: %v", e.Path, e.Segment, e.Err)
}

// Unwrap returns the underlying reason.
func (e *DecodeError) Unwrap() error { return e.Err }

// Matcher returns the path prefix under which a rocks tree keeps its addons.
func Matcher(tree string) string {
	return filepath.Join(tree, "lib", "luarocks")
}

// Accepts reports whether entry is an addon library entry for tree: a
// relative path below <tree>/lib/luarocks whose last segment is "types" and
// which has name and version directories in between.
func Accepts(entry, tree string) bool {
	if entry == "" || isRooted(entry) {
		return false
	}

	segs := segments(entry)
	prefix := segments(Matcher(tree))
	if len(segs) < len(prefix)+minAddonSegments {
		return false
	}
	if !slices.Equal(segs[:len(prefix)], prefix) {
		return false
	}
	return segs[len(segs)-1] == TypesDir
}

// Decode derives an Addon from an accepted library entry. The entry's parent
// directory is the version and the version's parent is the name. Callers
// must check Accepts first.
func Decode(entry string) (Addon, error) {
	slashed := path.Clean(filepath.ToSlash(entry))
	versionDir := path.Dir(slashed)
	nameDir := path.Dir(versionDir)

	version := path.Base(versionDir)
	if !utf8.ValidString(version) {
		return Addon{}, &DecodeError{Path: entry, Segment: "version", Err: ErrNotUTF8}
	}
	name := path.Base(nameDir)
	if !utf8.ValidString(name) {
		return Addon{}, &DecodeError{Path: entry, Segment: "name", Err: ErrNotUTF8}
	}

	return Addon{Name: name, Version: version, Location: entry}, nil
}

// Encode returns the library entry for an addon installed at location, which
// is the addon's installation directory (<tree>/lib/luarocks/.../<name>/<version>).
func Encode(location string) (string, error) {
	if !utf8.ValidString(location) {
		return "", &DecodeError{Path: location, Segment: "location", Err: ErrNotUTF8}
	}
	return filepath.Join(location, TypesDir), nil
}

// Within reports whether entry is an addon entry below a <tree>/lib/luarocks
// directory. Unlike Accepts it also matches rooted entries, which are written
// when the tree lies outside the working directory or is given as an
// absolute path.
func Within(entry, tree string) bool {
	if Accepts(entry, tree) {
		return true
	}
	if entry == "" || !isRooted(entry) {
		return false
	}

	segs := segments(entry)
	if segs[len(segs)-1] != TypesDir {
		return false
	}
	prefix := segments(Matcher(tree))
	for i := 0; i+len(prefix)+minAddonSegments <= len(segs); i++ {
		if slices.Equal(segs[i:i+len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// isRooted reports whether p is absolute or carries a volume or root.
func isRooted(p string) bool {
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return true
	}
	return strings.HasPrefix(filepath.ToSlash(p), "/")
}

// segments splits p into its meaningful path components, ignoring repeated
// separators and "." components.
func segments(p string) []string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	out := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return out
}
