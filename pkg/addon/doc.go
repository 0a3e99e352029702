// SPDX-License-Identifier: MPL-2.0

// Package addon defines the identity of a Lua language server addon and the
// codec between that identity and the library path strings stored in editor
// settings.
//
// An addon is identified by its name and version. The same addon is seen by
// three registries (online, installed, enabled); only the installed and
// enabled registries know where it lives on disk.
package addon
