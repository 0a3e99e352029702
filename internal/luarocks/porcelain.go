// SPDX-License-Identifier: MPL-2.0

package luarocks

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/llynx/llynx/internal/aggregate"
	"github.com/llynx/llynx/pkg/addon"
)

const (
	// installedFields are name, version, status and rocks directory.
	installedFields = 4
	// onlineFields are name, version, file type and source URL.
	onlineFields = 4

	rockspecType = "rockspec"
)

// ErrMalformedRecord is the sentinel wrapped by every RecordError.
var ErrMalformedRecord = errors.New("malformed luarocks record")

// RecordError is returned for a porcelain line that cannot be understood.
type RecordError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("luarocks output line %d: %v", e.Line, e.Err)
}

// Unwrap returns ErrMalformedRecord and the underlying cause.
func (e *RecordError) Unwrap() []error { return []error{ErrMalformedRecord, e.Err} }

// readRecords splits porcelain output into records of exactly n fields.
// Bad lines are collected and reported together.
func readRecords(out []byte, n int) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.Comma = '\t'
	r.FieldsPerRecord = n
	r.LazyQuotes = true

	var results []aggregate.Result[[]string]
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line, err = pe.StartLine, pe.Err
			}
			results = append(results, aggregate.Fail[[]string](&RecordError{Line: line, Err: err}))
			continue
		}
		results = append(results, aggregate.Ok(record))
	}
	return aggregate.Collect(results)
}

// parseInstalled parses `luarocks list --porcelain` output.
func parseInstalled(out []byte, cwd string) ([]addon.Addon, error) {
	records, err := readRecords(out, installedFields)
	if err != nil {
		return nil, err
	}

	addons := make([]addon.Addon, 0, len(records))
	for _, rec := range records {
		name, version, rocksDir := rec[0], rec[1], rec[3]
		addons = append(addons, addon.Addon{
			Name:     name,
			Version:  version,
			Location: relativeTo(cwd, filepath.Join(rocksDir, name, version)),
		})
	}
	return addons, nil
}

// parseOnline parses `luarocks search --porcelain` output, keeping rockspecs.
func parseOnline(out []byte) ([]addon.Addon, error) {
	records, err := readRecords(out, onlineFields)
	if err != nil {
		return nil, err
	}

	var addons []addon.Addon
	for _, rec := range records {
		if rec[2] != rockspecType {
			continue
		}
		addons = append(addons, addon.Addon{Name: rec[0], Version: rec[1]})
	}
	return addons, nil
}

// relativeTo returns path relative to dir when path lies below dir, and path
// unchanged otherwise.
func relativeTo(dir, path string) string {
	if dir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
