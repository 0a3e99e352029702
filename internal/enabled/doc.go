// SPDX-License-Identifier: MPL-2.0

// Package enabled reconciles the set of addons enabled for a workspace with
// the library list of its settings file.
//
// Per addon name the enabled set has two states: absent, or present at the
// path of the installed version. Enable moves absent to present and Disable
// moves present to absent; repeating either is a no-op. The pure functions
// (ListEnabled, EnableIn, DisableIn) work on explicit inputs; Reconciler adds
// the settings file and installed-registry plumbing around them.
package enabled
