// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates decoded Go values against embedded CUE schemas.
//
// Files in other formats (TOML, JSON) are decoded first; the resulting value
// is encoded into CUE, unified with a schema definition and validated:
//
//	//go:embed config_schema.cue
//	var schema string
//
//	if err := cueutil.Validate(schema, "#Config", decoded, ".llynx.toml"); err != nil {
//	    return err // "<file>: <field path>: <message>"
//	}
package cueutil
