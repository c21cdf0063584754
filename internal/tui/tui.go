// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

const (
	// ThemeDefault uses the default huh theme.
	ThemeDefault Theme = "default"
	// ThemeCharm uses the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 theme.
	ThemeBase16 Theme = "base16"
	// ThemeBase uses the minimal base theme.
	ThemeBase Theme = "base"
)

type (
	// Theme represents the visual theme for prompts.
	Theme string

	// Config holds common configuration for TUI components.
	Config struct {
		// Theme specifies the visual theme to use.
		Theme Theme
		// Accessible enables accessible mode for screen readers.
		Accessible bool
		// Input is where prompts read from (default: stdin).
		Input io.Reader
		// Output is where prompts and spinners write (default: stderr).
		Output io.Writer
	}
)

// DefaultConfig returns the default configuration. Accessible mode is on
// when stdin is not a terminal or the ACCESSIBLE environment variable is
// set. Prompts write to stderr so that stdout stays clean for output that
// may be piped.
func DefaultConfig() Config {
	return Config{
		Theme:      ThemeDefault,
		Accessible: !IsTerminal(os.Stdin) || os.Getenv("ACCESSIBLE") != "",
		Output:     os.Stderr,
	}
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of the terminal attached to v, or 0.
func TerminalWidth(v any) int {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func (c Config) output() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stderr
}

// form applies the shared theme and I/O settings to f.
func (c Config) form(f *huh.Form) *huh.Form {
	f = f.WithTheme(huhTheme(c.Theme)).
		WithAccessible(c.Accessible).
		WithOutput(c.output())
	if c.Input != nil {
		f = f.WithInput(c.Input)
	}
	return f
}

// huhTheme converts a Theme to a huh.Theme.
func huhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeCharm:
		return huh.ThemeCharm()
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	case ThemeBase:
		return huh.ThemeBase()
	default:
		return huh.ThemeCharm()
	}
}
