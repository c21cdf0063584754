// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
)

const (
	// ErrorKindConflict marks a release of a tag that already exists.
	ErrorKindConflict ErrorKind = "conflict"
	// ErrorKindAliasExists marks a request for an alias that is already taken.
	ErrorKindAliasExists ErrorKind = "alias-exists"
	// ErrorKindRejected marks any other refusal by the registry.
	ErrorKindRejected ErrorKind = "rejected"
)

var (
	// ErrTagConflict is returned when a release targets a tag that already exists.
	ErrTagConflict = errors.New("tag already exists")
	// ErrAliasExists is returned when requesting an alias that is already taken.
	ErrAliasExists = errors.New("alias already exists")
	// ErrRejected is returned when the registry refuses a request for a
	// registry-defined reason (e.g. the alias is not owned by the caller).
	ErrRejected = errors.New("rejected by registry")
	// ErrTransport is returned when the registry could not be reached or
	// answered with something that is not a registry response.
	ErrTransport = errors.New("registry transport failure")
)

type (
	// Identity is an authenticated registry user. It is opaque to crux and
	// passed through unmodified.
	Identity struct {
		User   uint64
		Secret string
	}

	// Alias is a registry alias snapshot: one owner and a tag -> script
	// reference mapping.
	Alias struct {
		Name  string            `json:"alias"`
		Owner uint64            `json:"owner"`
		Tags  map[string]string `json:"tags"`
	}

	// UploadResult describes the script that holds uploaded content.
	// Created is false when identical content was already stored; ScriptRef
	// then names the existing script.
	UploadResult struct {
		Created   bool
		ScriptRef string
	}

	// Registry is the capability set crux needs from a remote registry.
	// Every method is a blocking network call.
	Registry interface {
		// List returns every alias owned by user.
		List(ctx context.Context, user uint64) ([]Alias, error)
		// Request claims an unused alias for the caller.
		Request(ctx context.Context, id Identity, alias string) error
		// Release binds a new tag of alias to scriptRef.
		Release(ctx context.Context, id Identity, alias, tag, scriptRef string) error
		// Upload stores content under a display name.
		Upload(ctx context.Context, name string, content []byte) (UploadResult, error)
	}

	// ErrorKind classifies a registry refusal.
	ErrorKind string

	// Error is a refusal reported by the registry. Message carries the
	// registry's own wording and is shown verbatim.
	Error struct {
		Op      string
		Kind    ErrorKind
		Message string
		Status  int
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the sentinel matching the error kind so callers can use
// errors.Is with ErrTagConflict, ErrAliasExists or ErrRejected.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case ErrorKindConflict:
		return ErrTagConflict
	case ErrorKindAliasExists:
		return ErrAliasExists
	default:
		return ErrRejected
	}
}

// Find returns the alias named name owned by user, if present.
func Find(aliases []Alias, user uint64, name string) (Alias, bool) {
	for _, a := range aliases {
		if a.Name == name && a.Owner == user {
			return a, true
		}
	}
	return Alias{}, false
}
