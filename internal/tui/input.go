// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// InputOptions configures the Input component.
type InputOptions struct {
	// Title is the prompt to display.
	Title string
	// Description provides additional context below the title.
	Description string
	// Placeholder is shown while the input is empty.
	Placeholder string
	// Value pre-fills the input.
	Value string
	// Password hides typed characters.
	Password bool
	// Validate rejects invalid input with an error message.
	Validate func(string) error
	// Config holds common TUI configuration.
	Config Config
}

// Input prompts for a single line of text.
func Input(ctx context.Context, opts InputOptions) (string, error) {
	value := opts.Value
	field := huh.NewInput().
		Title(opts.Title).
		Placeholder(opts.Placeholder).
		Value(&value)
	if opts.Description != "" {
		field = field.Description(opts.Description)
	}
	if opts.Password {
		field = field.EchoMode(huh.EchoModePassword)
	}
	if opts.Validate != nil {
		field = field.Validate(opts.Validate)
	}

	form := opts.Config.form(huh.NewForm(huh.NewGroup(field)))
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("input prompt: %w", err)
	}
	return value, nil
}
