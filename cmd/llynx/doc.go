// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for llynx.
//
// Every command receives the App composition root, loads the layered
// configuration once per invocation and delegates to the LuaRocks registry
// and the enabled-set reconciler.
package cmd
