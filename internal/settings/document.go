// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// DefaultLibraryKey is the settings key of the Lua language server library list.
const DefaultLibraryKey = "Lua.workspace.library"

var (
	// ErrEmpty is returned by Load when the input holds no JSON value at all
	// (only whitespace or comments). It is not a parse failure.
	ErrEmpty = errors.New("settings document is empty")

	// ErrMalformed is the sentinel wrapped by every ParseError.
	ErrMalformed = errors.New("malformed settings document")

	// ErrWrite is the sentinel wrapped by every WriteError.
	ErrWrite = errors.New("settings file not writable")
)

// prettyOptions formats serialized documents the way editors write them.
var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

type (
	// ParseError is returned when a settings document cannot be understood.
	// It wraps ErrMalformed for errors.Is() compatibility.
	ParseError struct {
		// Path is the file the document came from, when known.
		Path string
		// Reason describes what is wrong.
		Reason string
	}

	// WriteError is returned when a settings file, its directory or its lock
	// cannot be written.
	WriteError struct {
		Op   string
		Path string
		Err  error
	}

	// Field is a settings entry other than the library list, kept verbatim.
	Field struct {
		Key string
		Raw []byte
	}

	// Document is a parsed settings file.
	Document struct {
		key    string
		fields []Field

		library    []string
		hasLibrary bool
		// libraryAt is the number of fields that preceded the library key in
		// the source, or -1 when it was absent.
		libraryAt int
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed settings file %s: %s", e.Path, e.Reason)
	}
	return "malformed settings document: " + e.Reason
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrMalformed }

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns ErrWrite and the underlying cause.
func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// New returns an empty document whose library list lives under key.
func New(key string) *Document {
	return &Document{key: key, libraryAt: -1}
}

// Load parses a settings document. Comments and trailing commas are allowed.
// Input with no JSON value returns ErrEmpty; anything else that is not a JSON
// object returns a *ParseError.
func Load(data []byte, key string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	std := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(std)) == 0 {
		return nil, ErrEmpty
	}
	if !gjson.ValidBytes(std) {
		return nil, &ParseError{Reason: "invalid JSON syntax"}
	}

	root := gjson.ParseBytes(std)
	if !root.IsObject() {
		return nil, &ParseError{Reason: fmt.Sprintf("top level must be an object, found %s", root.Type)}
	}

	doc := New(key)
	var parseErr error
	root.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if name != key {
			doc.fields = append(doc.fields, Field{Key: name, Raw: []byte(v.Raw)})
			return true
		}

		library, err := decodeLibrary(key, v)
		if err != nil {
			parseErr = err
			return false
		}
		doc.library = library
		doc.hasLibrary = library != nil
		doc.libraryAt = len(doc.fields)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return doc, nil
}

// decodeLibrary converts the raw library value. A JSON null counts as absent.
func decodeLibrary(key string, v gjson.Result) ([]string, error) {
	switch {
	case v.Type == gjson.Null:
		return nil, nil
	case !v.IsArray():
		return nil, &ParseError{Reason: fmt.Sprintf("%q must be an array of strings, found %s", key, v.Type)}
	}

	library := []string{}
	for i, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, &ParseError{Reason: fmt.Sprintf("%q[%d] must be a string, found %s", key, i, item.Type)}
		}
		library = append(library, item.Str)
	}
	return library, nil
}

// Key returns the settings key of the library list.
func (d *Document) Key() string {
	return d.key
}

// Library returns the library list and whether the key was present. A present
// but empty list returns an empty, non-nil slice.
func (d *Document) Library() ([]string, bool) {
	if !d.hasLibrary {
		return nil, false
	}
	return slices.Clone(d.library), true
}

// WithLibrary returns a copy of d whose library list is replaced by library.
// No other field changes.
func (d *Document) WithLibrary(library []string) *Document {
	out := &Document{
		key:        d.key,
		fields:     slices.Clone(d.fields),
		library:    append([]string{}, library...),
		hasLibrary: true,
		libraryAt:  d.libraryAt,
	}
	return out
}

// Serialize renders the document as indented JSON. Unrecognized fields keep
// their original order and values; the library list keeps its original
// position, or goes last when it was not in the source.
func (d *Document) Serialize() ([]byte, error) {
	out := []byte("{}")
	var err error

	for i, f := range d.fields {
		if d.hasLibrary && i == d.libraryAt {
			if out, err = d.setLibrary(out); err != nil {
				return nil, err
			}
		}
		if out, err = setRawField(out, f.Key, f.Raw); err != nil {
			return nil, fmt.Errorf("serialize settings field %q: %w", f.Key, err)
		}
	}
	if d.hasLibrary && (d.libraryAt < 0 || d.libraryAt >= len(d.fields)) {
		if out, err = d.setLibrary(out); err != nil {
			return nil, err
		}
	}

	return pretty.PrettyOptions(out, prettyOptions), nil
}

func (d *Document) setLibrary(out []byte) ([]byte, error) {
	library := d.library
	if library == nil {
		library = []string{}
	}
	out, err := sjson.SetBytes(out, escapeKey(d.key), library)
	if err != nil {
		return nil, fmt.Errorf("serialize settings field %q: %w", d.key, err)
	}
	return out, nil
}

// setRawField sets the member key of the object out to raw. sjson paths cannot
// address the empty key, so that member is appended directly.
func setRawField(out []byte, key string, raw []byte) ([]byte, error) {
	if key != "" {
		return sjson.SetRawBytes(out, escapeKey(key), raw)
	}

	body := bytes.TrimSpace(out)
	body = bytes.TrimSpace(body[:len(body)-1])
	res := slices.Clip(body)
	if len(body) > 1 {
		res = append(res, ',')
	}
	res = append(res, `"":`...)
	res = append(res, raw...)
	return append(res, '}'), nil
}

// escapeKey turns a literal object key into a single path component for
// sjson by escaping every byte that is not a letter, digit or underscore.
func escapeKey(key string) string {
	var sb strings.Builder
	sb.Grow(len(key) * 2)
	for i := 0; i < len(key); i++ {
		c := key[i]
		isWord := c == '_' || c >= 0x80 ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isWord {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
