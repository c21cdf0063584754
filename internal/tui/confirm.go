// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ConfirmOptions configures the Confirm component.
type ConfirmOptions struct {
	// Title is the question to display.
	Title string
	// Description provides additional context below the title.
	Description string
	// Affirmative is the text for the affirmative option (default: "Yes").
	Affirmative string
	// Negative is the text for the negative option (default: "No").
	Negative string
	// Default is the preselected answer.
	Default bool
	// Config holds common TUI configuration.
	Config Config
}

// Confirm asks a yes/no question and returns the answer.
func Confirm(ctx context.Context, opts ConfirmOptions) (bool, error) {
	affirmative := opts.Affirmative
	if affirmative == "" {
		affirmative = "Yes"
	}
	negative := opts.Negative
	if negative == "" {
		negative = "No"
	}

	answer := opts.Default
	field := huh.NewConfirm().
		Title(opts.Title).
		Affirmative(affirmative).
		Negative(negative).
		Value(&answer)
	if opts.Description != "" {
		field = field.Description(opts.Description)
	}

	form := opts.Config.form(huh.NewForm(huh.NewGroup(field)))
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return answer, nil
}
