// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/llynx/llynx/internal/issue"
	"github.com/llynx/llynx/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "llynx"
	// FileName is the config file looked up in the working directory.
	FileName = ".llynx.toml"
	// EnvPrefix prefixes environment overrides, e.g. LLYNX_TREE.
	EnvPrefix = "LLYNX"

	schemaKey = "$schema"
)

//go:embed config_schema.cue
var configSchema string

// Keys lists every configuration key in file order.
func Keys() []string {
	return []string{"luarocks", "tree", "settings", "server", "library_key", "verbose", "disable_before_remove"}
}

// loadWithOptions performs option-driven config loading on a fresh Viper
// instance, so concurrent loads never share state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("luarocks", defaults.LuaRocks)
	v.SetDefault("tree", defaults.Tree)
	v.SetDefault("settings", defaults.Settings)
	v.SetDefault("server", defaults.Server)
	v.SetDefault("library_key", defaults.LibraryKey)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("disable_before_remove", defaults.DisableBeforeRemove)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path, err := resolvePath(fs, opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadTOMLIntoViper(fs, v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid TOML").
				WithSuggestion("Verify the keys and values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	for key, value := range opts.Overrides {
		if !slices.Contains(Keys(), key) {
			return nil, fmt.Errorf("%w: unknown override key %q", ErrInvalidConfig, key)
		}
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check the LLYNX_* environment variables and command-line flags").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolvePath returns the config file to read, or "" for defaults only.
func resolvePath(fs afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(fs, opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'llynx config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(ErrConfigNotFound).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	local := filepath.Join(opts.WorkDir, FileName)
	if fileExists(fs, local) {
		return local, nil
	}
	return "", nil
}

// loadTOMLIntoViper strictly decodes a TOML file, validates it against the
// #Config schema and merges its keys into Viper.
func loadTOMLIntoViper(fs afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	var strict fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&strict); err != nil {
		return formatTOMLError(err, path)
	}

	var configMap map[string]any
	if err := toml.Unmarshal(data, &configMap); err != nil {
		return formatTOMLError(err, path)
	}

	if err := cueutil.Validate(configSchema, "#Config", configMap, path); err != nil {
		return err
	}

	delete(configMap, schemaKey)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// formatTOMLError adds the file path and position to go-toml errors.
func formatTOMLError(err error, path string) error {
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return fmt.Errorf("%s: unknown configuration keys:\n%s", path, strictErr.String())
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
	}

	return fmt.Errorf("%s: %w", path, err)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Marshal renders cfg as TOML in file key order.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
