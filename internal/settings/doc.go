// SPDX-License-Identifier: MPL-2.0

// Package settings models the editor settings file that records which addons
// are enabled for a workspace.
//
// Exactly one field of the file is understood: the library list (by default
// "Lua.workspace.library"). Every other field is kept as raw JSON, in its
// original order, and written back untouched. Input may contain comments and
// trailing commas; output is plain, indented JSON.
package settings
