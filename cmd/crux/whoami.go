// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cruxland/crux/internal/auth"
)

// newWhoamiCommand creates the `crux whoami` command.
func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "See who's currently signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}
			creds, err := requireCredentials(s.store, s.base.String())
			if err != nil {
				return app.handleError(cmd, err)
			}
			fmt.Fprintf(app.stdout, "%d (%s)\n", creds.User, displayLogin(creds))
			return nil
		},
	}
}

// newLogoutCommand creates the `crux logout` command.
func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}
			creds, err := s.store.Remove()
			if errors.Is(err, auth.ErrNotSignedIn) {
				return app.handleError(cmd, notSignedIn(s.base.String(), err))
			}
			if err != nil {
				return app.handleError(cmd, err)
			}

			who := "previous user"
			if creds != nil {
				who = fmt.Sprintf("%d (%s)", creds.User, displayLogin(creds))
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render(fmt.Sprintf("Signed out %s from %s", who, s.base.String())))
			return nil
		},
	}
}
