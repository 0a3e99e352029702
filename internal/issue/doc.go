// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of Markdown
// remediation guides printed when an llynx command fails.
package issue
