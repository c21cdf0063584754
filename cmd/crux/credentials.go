// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/issue"
)

// requireCredentials loads the credentials stored for base. A missing sign-in
// becomes a ServiceError that points the user at `crux login`.
func requireCredentials(store auth.Store, base string) (*auth.Credentials, error) {
	creds, err := store.Load()
	if err == nil {
		return creds, nil
	}
	if !errors.Is(err, auth.ErrNotSignedIn) {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	return nil, notSignedIn(base, err)
}

func notSignedIn(base string, cause error) error {
	ae := issue.NewErrorContext().
		WithOperation("load credentials").
		WithResource(base).
		WithSuggestion("Sign in with 'crux login'").
		WithSuggestion("Pass --base-dir if your credentials live in another directory").
		WithIssue(issue.NotSignedInId).
		Wrap(cause).
		BuildError()
	return newServiceError(ae, issue.NotSignedInId,
		WarningStyle.Render(fmt.Sprintf("You are currently not signed in on '%s'!", base))+"\n")
}

// displayLogin returns the stored GitHub login or "unknown".
func displayLogin(c *auth.Credentials) string {
	if c.Login == "" {
		return "unknown"
	}
	return c.Login
}
