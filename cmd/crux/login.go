// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/tui"
)

const (
	strategyManual = "manual"
	strategyGitHub = "github"
)

var (
	errInvalidUserID = errors.New("user id must be a positive number")
	errEmptySecret   = errors.New("secret must not be empty")
)

// loginParams bundles the dependencies and flags for the login command.
type loginParams struct {
	stdout  io.Writer
	stderr  io.Writer
	base    string
	store   auth.Store
	prompts Prompter
	logins  LoginLookup
	ui      tui.Config
	logger  *log.Logger

	strategy string
	user     string // --user (empty = prompt)
	secret   string // --secret (empty = prompt)
	yes      bool   // save even when the login lookup fails
}

// newLoginCommand creates the `crux login` command.
func newLoginCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [manual|github]",
		Short: "Sign into crux.land",
		Long: `Sign into crux.land.

The manual strategy asks for your crux user id and secret, looks up the
matching GitHub login and stores the credentials for the current registry.`,
		ValidArgs: []string{strategyManual, strategyGitHub},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			secret, _ := cmd.Flags().GetString("secret")
			yes, _ := cmd.Flags().GetBool("yes")

			s, err := app.session(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}

			strategy := strategyManual
			if len(args) > 0 {
				strategy = args[0]
			}

			p := loginParams{
				stdout:   app.stdout,
				stderr:   app.stderr,
				base:     s.base.String(),
				store:    s.store,
				prompts:  app.Prompts,
				logins:   app.Logins,
				ui:       s.ui,
				logger:   s.logger,
				strategy: strategy,
				user:     user,
				secret:   secret,
				yes:      yes,
			}
			return app.handleError(cmd, runLogin(cmd.Context(), p))
		},
	}

	cmd.Flags().String("user", "", "crux user id (prompted when omitted)")
	cmd.Flags().String("secret", "", "crux user secret (prompted when omitted)")
	cmd.Flags().BoolP("yes", "y", false, "save the credentials even if no GitHub user matches the id")

	return cmd
}

// runLogin signs in with the selected strategy.
func runLogin(ctx context.Context, p loginParams) error {
	if p.strategy != strategyManual {
		return fmt.Errorf("the %q sign-in strategy has not been implemented yet", p.strategy)
	}

	rawUser := p.user
	if rawUser == "" {
		var err error
		rawUser, err = p.prompts.Input(ctx, tui.InputOptions{
			Title:    "What's your crux user ID?",
			Validate: func(s string) error { _, err := parseUserID(s); return err },
			Config:   p.ui,
		})
		if err != nil {
			return fmt.Errorf("user id prompt: %w", err)
		}
	}
	user, err := parseUserID(rawUser)
	if err != nil {
		return err
	}

	secret := p.secret
	if secret == "" {
		secret, err = p.prompts.Input(ctx, tui.InputOptions{
			Title:    "What's your crux user secret?",
			Password: true,
			Validate: validateSecret,
			Config:   p.ui,
		})
		if err != nil {
			return fmt.Errorf("secret prompt: %w", err)
		}
	}
	if err := validateSecret(secret); err != nil {
		return err
	}

	var login string
	lookupErr := tui.Spin(ctx, p.ui, "Fetching login name.", func(ctx context.Context) error {
		var err error
		login, err = p.logins.Login(ctx, user)
		return err
	})
	if lookupErr == nil {
		fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Hello, %s!", login)))
	} else {
		p.logger.Debug("login lookup failed", "user", user, "err", lookupErr)
		if !p.yes {
			save, err := p.prompts.Confirm(ctx, tui.ConfirmOptions{
				Title:   "We could not find a user with that ID, do you still want to save?",
				Default: false,
				Config:  p.ui,
			})
			if err != nil {
				return fmt.Errorf("confirmation prompt: %w", err)
			}
			if !save {
				fmt.Fprintln(p.stdout, "Okay we won't save!")
				return nil
			}
		}
	}

	if err := p.store.Save(auth.Credentials{User: user, Secret: secret, Login: login}); err != nil {
		return fmt.Errorf("could not save authentication information: %w", err)
	}
	fmt.Fprintln(p.stdout, SuccessStyle.Render("Saved!"))
	fmt.Fprintln(p.stderr, VerboseStyle.Render("Signed in on "+p.base))
	return nil
}

func parseUserID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidUserID, s)
	}
	return id, nil
}

func validateSecret(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmptySecret
	}
	return nil
}
