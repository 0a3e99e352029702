// SPDX-License-Identifier: MPL-2.0

// Package aggregate reduces a sequence of fallible computations into either
// all of their values or a single error describing every failure.
//
// A lone failure is returned unchanged so that callers handling one bad item
// see exactly the error they would have seen without aggregation. Two or
// more failures are wrapped in an *Error.
package aggregate
