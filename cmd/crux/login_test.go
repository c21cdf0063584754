// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/github"
)

func octocatLookup(t *testing.T) LoginLookup {
	t.Helper()
	return loginFunc(func(_ context.Context, id uint64) (string, error) {
		if id != 42 {
			return "", github.ErrUserNotFound
		}
		return "octocat", nil
	})
}

func TestLoginWithFlags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, octocatLookup(t))
	if err := env.run("login", "--user", "42", "--secret", "s3cret"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "Hello, octocat!") || !strings.Contains(out, "Saved!") {
		t.Errorf("stdout = %q", out)
	}
	creds, err := env.store().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := auth.Credentials{User: 42, Secret: "s3cret", Login: "octocat"}
	if *creds != want {
		t.Errorf("Load() = %+v, want %+v", *creds, want)
	}
}

func TestLoginPrompts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, octocatLookup(t))
	env.prompts.inputs = []string{"42", "s3cret"}

	if err := env.run("login", "manual"); err != nil {
		t.Fatalf("login error = %v", err)
	}
	asked := env.prompts.asked()
	if len(asked) != 2 || asked[0] != "What's your crux user ID?" || asked[1] != "What's your crux user secret?" {
		t.Errorf("prompts = %q", asked)
	}
	if _, err := env.store().Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		confirms []bool
		wantSave bool
		wantOut  string
	}{
		{"declined", nil, []bool{false}, false, "Okay we won't save!"},
		{"accepted", nil, []bool{true}, true, "Saved!"},
		{"yes flag", []string{"--yes"}, nil, true, "Saved!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, octocatLookup(t))
			env.prompts.confirms = tt.confirms

			args := append([]string{"login", "--user", "7", "--secret", "s3cret"}, tt.args...)
			if err := env.run(args...); err != nil {
				t.Fatalf("login error = %v", err)
			}
			if !strings.Contains(env.stdout.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want %q", env.stdout.String(), tt.wantOut)
			}

			creds, err := env.store().Load()
			if tt.wantSave {
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if creds.User != 7 || creds.Login != "" {
					t.Errorf("Load() = %+v, want user 7 without login", *creds)
				}
			} else if !errors.Is(err, auth.ErrNotSignedIn) {
				t.Errorf("Load() error = %v, want ErrNotSignedIn", err)
			}
		})
	}
}

func TestLoginErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		wantIs error
	}{
		{"github strategy", []string{"login", "github"}, nil},
		{"invalid user id", []string{"login", "--user", "abc", "--secret", "s"}, errInvalidUserID},
		{"zero user id", []string{"login", "--user", "0", "--secret", "s"}, errInvalidUserID},
		{"blank secret", []string{"login", "--user", "1", "--secret", "  "}, errEmptySecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, octocatLookup(t))
			err := env.run(tt.args...)
			if code := exitCode(t, err); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if _, err := env.store().Load(); !errors.Is(err, auth.ErrNotSignedIn) {
				t.Errorf("credentials were saved: Load() error = %v", err)
			}
		})
	}
}

func TestLoginRejectsUnknownStrategy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, octocatLookup(t))
	if err := env.run("login", "oauth"); err == nil {
		t.Fatal("login oauth succeeded, want argument error")
	}
}

func TestParseUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"18446744073709551615", 18446744073709551615, false},
		{"18446744073709551616", 0, true},
		{"-1", 0, true},
		{"0", 0, true},
		{"", 0, true},
		{"4 2", 0, true},
	}
	for _, tt := range tests {
		got, err := parseUserID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseUserID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseUserID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
