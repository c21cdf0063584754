// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cruxland/crux/internal/registry"
)

// InitialTag is the tag proposed for the first release of an alias.
const InitialTag = "0.1.0"

var (
	// ErrAliasNotOwned is returned when the snapshot holds no alias of the
	// given name owned by the caller.
	ErrAliasNotOwned = errors.New("alias not owned")
	// ErrVersionOverflow is returned when an increment would exceed the
	// range of a version component.
	ErrVersionOverflow = errors.New("version component overflow")
)

// Current is the highest released tag of an alias and the script it
// points to.
type Current struct {
	Tag       string
	ScriptRef string
}

// ResolveCurrent finds alias in entries and returns its highest tag by
// semantic version precedence. Prerelease tags are eligible. Tags that are
// not valid versions are ignored. Tags of equal precedence resolve to the
// lexically greatest string.
//
// A nil Current with a nil error means the alias has no releases yet.
func ResolveCurrent(entries []registry.Alias, user uint64, alias string) (*Current, error) {
	entry, ok := registry.Find(entries, user, alias)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAliasNotOwned, alias)
	}

	var cur *Current
	for tag, ref := range entry.Tags {
		if !IsValid(tag) {
			continue
		}
		if cur == nil {
			cur = &Current{Tag: tag, ScriptRef: ref}
			continue
		}
		c := Compare(tag, cur.Tag)
		if c > 0 || (c == 0 && strings.Compare(tag, cur.Tag) > 0) {
			cur = &Current{Tag: tag, ScriptRef: ref}
		}
	}
	return cur, nil
}

// ComputeNext returns the tag that follows current for the given bump.
// Without a current release the result is InitialTag whatever the bump.
// Incrementing drops prerelease and build metadata, so a patch bump of
// "1.2.3-rc.1" yields "1.2.4".
func ComputeNext(current *Current, bump Bump) (string, error) {
	if current == nil {
		return InitialTag, nil
	}

	t, err := ParseTag(current.Tag)
	if err != nil {
		return "", err
	}

	next := Tag{}
	switch bump {
	case BumpMajor:
		if t.Major == math.MaxUint64 {
			return "", fmt.Errorf("%w: major of %q", ErrVersionOverflow, current.Tag)
		}
		next.Major = t.Major + 1
	case BumpMinor:
		if t.Minor == math.MaxUint64 {
			return "", fmt.Errorf("%w: minor of %q", ErrVersionOverflow, current.Tag)
		}
		next.Major, next.Minor = t.Major, t.Minor+1
	case BumpPatch:
		if t.Patch == math.MaxUint64 {
			return "", fmt.Errorf("%w: patch of %q", ErrVersionOverflow, current.Tag)
		}
		next.Major, next.Minor, next.Patch = t.Major, t.Minor, t.Patch+1
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidBump, bump)
	}
	return next.String(), nil
}
