// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// formatCUEError renders CUE errors as "<file>: <field.path>: <message>",
// one line per error.
func formatCUEError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	all := cueerrors.Errors(err)
	if len(all) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(all))
	for _, e := range all {
		path := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
			lines = append(lines, path+": "+msg)
			continue
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}
