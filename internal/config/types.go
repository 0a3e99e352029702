// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxVerbose is the highest meaningful verbosity level (debug).
	MaxVerbose = 3
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrConfigNotFound is returned when an explicit config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)

type (
	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// every field-level problem.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LuaRocks is the LuaRocks executable name or path.
		LuaRocks string `toml:"luarocks" mapstructure:"luarocks"`
		// Tree is the rocks tree addons are installed into.
		Tree string `toml:"tree" mapstructure:"tree"`
		// Settings is the editor settings file holding the library list.
		Settings string `toml:"settings" mapstructure:"settings"`
		// Server is the manifest searched for online addons.
		Server string `toml:"server" mapstructure:"server"`
		// LibraryKey is the settings key holding the library list.
		LibraryKey string `toml:"library_key" mapstructure:"library_key"`
		// Verbose selects the log level: 0 error, 1 warn, 2 info, 3 debug.
		Verbose int `toml:"verbose" mapstructure:"verbose"`
		// DisableBeforeRemove disables an addon before removing it.
		DisableBeforeRemove bool `toml:"disable_before_remove" mapstructure:"disable_before_remove"`

		// Source is the config file the values were read from, if any.
		Source string `toml:"-" mapstructure:"-"`
	}

	// fileConfig is the on-disk form. Pointers distinguish unset keys.
	fileConfig struct {
		Schema              *string `toml:"$schema"`
		LuaRocks            *string `toml:"luarocks"`
		Tree                *string `toml:"tree"`
		Settings            *string `toml:"settings"`
		Server              *string `toml:"server"`
		LibraryKey          *string `toml:"library_key"`
		Verbose             *int    `toml:"verbose"`
		DisableBeforeRemove *bool   `toml:"disable_before_remove"`
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LuaRocks:            "luarocks",
		Tree:                ".lls_addons",
		Settings:            ".vscode/settings.json",
		Server:              "https://luarocks.org/m/lls-addons",
		LibraryKey:          "Lua.workspace.library",
		Verbose:             0,
		DisableBeforeRemove: false,
	}
}

// Validate returns an *InvalidConfigError listing every invalid field.
// Environment variables and flags bypass the file schema, so this runs on
// the fully merged result.
func (c *Config) Validate() error {
	var errs []error
	for _, f := range []struct{ key, value string }{
		{"luarocks", c.LuaRocks},
		{"tree", c.Tree},
		{"settings", c.Settings},
		{"server", c.Server},
		{"library_key", c.LibraryKey},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", f.key))
		}
	}
	if c.Verbose < 0 {
		errs = append(errs, fmt.Errorf("verbose: must not be negative, got %d", c.Verbose))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// LogLevelIndex clamps Verbose into 0..MaxVerbose.
func (c *Config) LogLevelIndex() int {
	return min(max(c.Verbose, 0), MaxVerbose)
}
