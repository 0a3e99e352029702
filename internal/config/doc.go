// SPDX-License-Identifier: MPL-2.0

// Package config loads llynx configuration using Viper.
//
// Values are layered, later sources winning: built-in defaults, the TOML file
// (.llynx.toml in the working directory, or an explicit path), LLYNX_*
// environment variables and finally command-line overrides. The file is
// decoded strictly and validated against an embedded CUE schema
// (config_schema.cue) before it is merged.
package config
