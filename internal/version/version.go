// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidTag is returned for strings that are not MAJOR.MINOR.PATCH
// semantic versions.
var ErrInvalidTag = errors.New("invalid version tag")

// Tag is a parsed semantic version.
type Tag struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string // without the leading "-"
	Build      string // without the leading "+"
}

// ParseTag parses s as MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. A leading
// "v" and the shorthand forms accepted by x/mod/semver ("1", "1.2") are
// rejected.
func ParseTag(s string) (Tag, error) {
	if s == "" || strings.HasPrefix(s, "v") || !semver.IsValid(canonical(s)) {
		return Tag{}, fmt.Errorf("%w: %q", ErrInvalidTag, s)
	}

	core, build, _ := strings.Cut(s, "+")
	core, pre, _ := strings.Cut(core, "-")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Tag{}, fmt.Errorf("%w: %q must have major, minor and patch", ErrInvalidTag, s)
	}

	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Tag{}, fmt.Errorf("%w: %q: %w", ErrInvalidTag, s, err)
		}
		nums[i] = n
	}

	return Tag{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: pre,
		Build:      build,
	}, nil
}

// IsValid reports whether s parses as a Tag.
func IsValid(s string) bool {
	_, err := ParseTag(s)
	return err == nil
}

// String renders the tag in its canonical textual form.
func (t Tag) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", t.Major, t.Minor, t.Patch)
	if t.Prerelease != "" {
		b.WriteString("-" + t.Prerelease)
	}
	if t.Build != "" {
		b.WriteString("+" + t.Build)
	}
	return b.String()
}

// Compare returns -1, 0 or +1 by semantic version precedence. Build
// metadata is ignored. An invalid tag sorts below every valid one and two
// invalid tags compare equal.
func Compare(a, b string) int {
	va, vb := IsValid(a), IsValid(b)
	switch {
	case !va && !vb:
		return 0
	case !va:
		return -1
	case !vb:
		return 1
	}
	return semver.Compare(canonical(a), canonical(b))
}

// Sort orders tags ascending by precedence. Tags of equal precedence are
// ordered lexically and invalid tags are placed last.
func Sort(tags []string) {
	slices.SortStableFunc(tags, func(a, b string) int {
		va, vb := IsValid(a), IsValid(b)
		switch {
		case va && !vb:
			return -1
		case !va && vb:
			return 1
		case !va && !vb:
			return strings.Compare(a, b)
		}
		if c := semver.Compare(canonical(a), canonical(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// canonical adds the "v" prefix expected by x/mod/semver.
func canonical(s string) string {
	return "v" + s
}
