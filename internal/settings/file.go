// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// StateLoaded means the file existed and held a document.
	StateLoaded State = iota
	// StateMissing means the file does not exist.
	StateMissing
	// StateEmpty means the file exists but holds no JSON value.
	StateEmpty
)

// lockSuffix names the advisory lock file kept next to the settings file.
const lockSuffix = ".lock"

type (
	// State tells how a settings file was found when read.
	State int

	// UpdateFunc computes a new library list from the current one. It reports
	// whether anything changed; unchanged results are not written.
	UpdateFunc func(library []string) (updated []string, changed bool, err error)

	// File is a settings file on a filesystem.
	//
	// Update holds an exclusive advisory lock (<path>.lock) for the whole
	// read-modify-write when the file lives on the OS filesystem. The lock
	// only serializes cooperating llynx processes; an editor writing the same
	// file concurrently can still lose or overwrite an update.
	//
	// The lock file stays in place after the update. It is only created once
	// the settings directory exists: an update that changes nothing in
	// a missing directory creates neither the directory nor the lock.
	File struct {
		fs   afero.Fs
		path string
		key  string
		lock bool
	}

	// FileOption configures a File.
	FileOption func(*File)
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateMissing:
		return "missing"
	case StateEmpty:
		return "empty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// WithFs replaces the OS filesystem. Locking is disabled for non-OS filesystems.
func WithFs(fsys afero.Fs) FileOption {
	return func(f *File) {
		f.fs = fsys
		_, isOS := fsys.(*afero.OsFs)
		f.lock = isOS
	}
}

// NewFile returns the settings file at path whose library list lives under key.
func NewFile(path, key string, opts ...FileOption) *File {
	f := &File{
		fs:   afero.NewOsFs(),
		path: path,
		key:  key,
		lock: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the settings file path.
func (f *File) Path() string {
	return f.path
}

// Key returns the settings key of the library list.
func (f *File) Key() string {
	return f.key
}

// Read loads the settings file. A missing or empty file yields an empty
// document and the matching State, not an error.
func (f *File) Read() (*Document, State, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(f.key), StateMissing, nil
		}
		return nil, StateMissing, fmt.Errorf("read settings file %s: %w", f.path, err)
	}

	doc, err := Load(data, f.key)
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			return New(f.key), StateEmpty, nil
		}
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = f.path
		}
		return nil, StateLoaded, err
	}

	return doc, StateLoaded, nil
}

// Write serializes doc into the settings file, creating parent directories.
func (f *File) Write(doc *Document) error {
	data, err := doc.Serialize()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Op: "create settings directory", Path: dir, Err: err}
		}
	}
	if err := afero.WriteFile(f.fs, f.path, data, 0o644); err != nil {
		return &WriteError{Op: "write settings file", Path: f.path, Err: err}
	}
	return nil
}

// Update reads the library list (empty when missing), applies fn and writes
// the result back when fn reports a change. It returns whether the file was
// written. When the settings directory does not exist yet fn is first run
// against an empty list without locking, and run again under the lock only
// if it reports a change.
func (f *File) Update(fn UpdateFunc) (bool, error) {
	if f.lock && !f.dirExists() {
		_, changed, err := fn([]string{})
		if err != nil || !changed {
			return false, err
		}
	}

	unlock, err := f.acquire()
	if err != nil {
		return false, err
	}
	defer unlock()

	doc, _, err := f.Read()
	if err != nil {
		return false, err
	}

	library, _ := doc.Library()
	if library == nil {
		library = []string{}
	}

	updated, changed, err := fn(library)
	if err != nil || !changed {
		return false, err
	}

	if err := f.Write(doc.WithLibrary(updated)); err != nil {
		return false, err
	}
	return true, nil
}

// dirExists reports whether the settings file's directory exists.
func (f *File) dirExists() bool {
	ok, err := afero.DirExists(f.fs, filepath.Dir(f.path))
	return err == nil && ok
}

// acquire takes the advisory lock for a read-modify-write cycle.
func (f *File) acquire() (func(), error) {
	if !f.lock {
		return func() {}, nil
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, &WriteError{Op: "create settings directory", Path: dir, Err: err}
		}
	}

	fl := flock.New(f.path + lockSuffix)
	if err := fl.Lock(); err != nil {
		return nil, &WriteError{Op: "lock settings file", Path: f.path, Err: err}
	}
	return func() { _ = fl.Unlock() }, nil
}
