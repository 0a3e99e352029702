// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds files read before validation (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

// Validate unifies value with the definition named by definition (e.g.
// "#Config") in schema and validates the result. Fields the schema leaves
// optional may be absent. Errors name filename and the offending field.
func Validate(schema, definition string, value any, filename string) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if !root.Exists() {
		return fmt.Errorf("internal error: schema definition %s not found", definition)
	}

	userValue := ctx.Encode(value)
	if userValue.Err() != nil {
		return FormatError(userValue.Err(), filename)
	}

	if err := root.Unify(userValue).Validate(cue.Concrete(false)); err != nil {
		return FormatError(err, filename)
	}
	return nil
}

// CheckFileSize returns an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
