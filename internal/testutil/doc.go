// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately instead of returning errors.
//
// Helpers cover environment variables (MustSetenv, SetHomeDir) and files
// (MustWriteFile, MustReadFile).
package testutil
