// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// Spin runs fn while showing a spinner titled title. Without a terminal on
// the output, or in accessible mode, fn runs without animation. The error
// returned by fn is returned unchanged.
func Spin(ctx context.Context, cfg Config, title string, fn func(ctx context.Context) error) error {
	if cfg.Accessible || !IsTerminal(cfg.output()) {
		return fn(ctx)
	}

	var fnErr error
	err := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() { fnErr = fn(ctx) }).
		Run()
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	return nil
}
