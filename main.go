// SPDX-License-Identifier: MPL-2.0

// Command crux publishes scripts to a crux.land registry.
package main

import cmd "github.com/cruxland/crux/cmd/crux"

func main() {
	cmd.Execute()
}
