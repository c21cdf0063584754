// SPDX-License-Identifier: MPL-2.0

// Package tui wraps charmbracelet/huh prompts and spinners for the crux CLI.
//
// Prompts fall back to huh's accessible mode when stdin is not a terminal or
// ACCESSIBLE is set, and spinners are skipped when output is not a terminal,
// so crux behaves in pipes and CI.
package tui
