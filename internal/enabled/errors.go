// SPDX-License-Identifier: MPL-2.0

package enabled

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled is returned when an addon to enable or disable is not in
	// the installed registry.
	ErrNotInstalled = errors.New("addon is not installed")

	// ErrNoLocation is returned when the installed registry reports an addon
	// without an installation directory.
	ErrNoLocation = errors.New("installed addon has no location")
)

// NotInstalledError is returned when name is absent from the installed
// registry. It wraps ErrNotInstalled for errors.Is() compatibility.
type NotInstalledError struct {
	Name string
}

// Error implements the error interface.
func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("addon '%s' is not installed", e.Name)
}

// Unwrap returns ErrNotInstalled for errors.Is() compatibility.
func (e *NotInstalledError) Unwrap() error { return ErrNotInstalled }
