// SPDX-License-Identifier: MPL-2.0

// Package auth persists registry credentials. Each registry base URL gets
// its own dotenv file named after the fingerprint of the URL, so signing in
// to one registry never affects another.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cruxland/crux/internal/fingerprint"
	"github.com/cruxland/crux/internal/registry"
)

// DefaultDir is the credential directory used when none is configured.
const DefaultDir = "~/.crux/auth"

const (
	keyLogin  = "CRUX_CLI_AUTH_INFO_USER"
	keyUserID = "CRUX_CLI_AUTH_USER_ID"
	keySecret = "CRUX_CLI_AUTH_USER_SECRET"

	fileMode = 0o600
	dirMode  = 0o700
)

// ErrNotSignedIn is returned when no usable credentials are stored for a
// registry.
var ErrNotSignedIn = errors.New("not signed in")

//nolint:gochecknoglobals // Compiled once.
var userIDPattern = regexp.MustCompile(`^[0-9]+$`)

type (
	// Credentials identify a registry user. Login is the optional GitHub
	// login shown by whoami.
	Credentials struct {
		User   uint64
		Secret string
		Login  string
	}

	// Store reads and writes the credentials of one registry.
	Store struct {
		// Dir holds the credential files. A leading "~" expands to the
		// user's home directory. Empty means DefaultDir.
		Dir string
		// BaseURL is the registry API base the credentials belong to.
		BaseURL string
	}
)

// Identity returns the registry identity of c.
func (c Credentials) Identity() registry.Identity {
	return registry.Identity{User: c.User, Secret: c.Secret}
}

// Path returns the credential file of the store.
func (s Store) Path() (string, error) {
	dir, err := ExpandHome(s.dirOrDefault())
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fingerprint.String(s.BaseURL)+".env"), nil
}

// Save writes c, replacing any stored credentials.
func (s Store) Save(c Credentials) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	data, err := godotenv.Marshal(map[string]string{
		keyLogin:  c.Login,
		keyUserID: strconv.FormatUint(c.User, 10),
		keySecret: c.Secret,
	})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(path, []byte(data+"\n"), fileMode); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, fileMode); err != nil {
		return fmt.Errorf("restricting credential file: %w", err)
	}
	return nil
}

// Load returns the stored credentials. A missing or unparsable file, a
// non-numeric user id or an empty secret all yield ErrNotSignedIn.
func (s Store) Load() (*Credentials, error) {
	path, err := s.Path()
	if err != nil {
		return nil, err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotSignedIn
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		return nil, fmt.Errorf("%w: %s is malformed", ErrNotSignedIn, path)
	}

	id := env[keyUserID]
	secret := env[keySecret]
	if !userIDPattern.MatchString(id) || secret == "" {
		return nil, fmt.Errorf("%w: %s is incomplete", ErrNotSignedIn, path)
	}
	user, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: user id: %w", ErrNotSignedIn, err)
	}

	return &Credentials{User: user, Secret: secret, Login: env[keyLogin]}, nil
}

// Remove deletes the stored credentials and returns what was stored.
// ErrNotSignedIn is returned when there was nothing to remove.
func (s Store) Remove() (*Credentials, error) {
	creds, err := s.Load()
	if err != nil && !errors.Is(err, ErrNotSignedIn) {
		return nil, err
	}

	path, perr := s.Path()
	if perr != nil {
		return nil, perr
	}
	if rmErr := os.Remove(path); rmErr != nil {
		if errors.Is(rmErr, fs.ErrNotExist) {
			return nil, ErrNotSignedIn
		}
		return nil, fmt.Errorf("removing credentials: %w", rmErr)
	}
	return creds, nil
}

func (s Store) dirOrDefault() string {
	if s.Dir == "" {
		return DefaultDir
	}
	return s.Dir
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
