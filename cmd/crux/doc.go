// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for crux.
//
// The command tree is built by NewRootCommand around an App, which holds
// the registry client, credential store and prompts for one invocation.
// Command handlers parse flags into a params struct and call a run
// function that writes only to the writers it is given.
package cmd
