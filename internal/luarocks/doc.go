// SPDX-License-Identifier: MPL-2.0

// Package luarocks drives the LuaRocks executable to query and modify the
// online and installed addon registries.
//
// Every query uses the --porcelain output format: tab-separated records, one
// per line. The package never resolves dependencies or downloads anything on
// its own; that is LuaRocks' job.
package luarocks
