// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of known issues.
//
// An ActionableError carries the failed operation, the resource involved and
// suggestions for the user. It may link to a catalog Issue whose Markdown
// guidance the CLI renders with glamour.
package issue
