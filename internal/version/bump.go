// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"strings"
)

// BumpNone means no increment was requested.
const (
	BumpNone Bump = iota
	BumpMajor
	BumpMinor
	BumpPatch
)

// ErrInvalidBump is returned for unknown bump names, and by ComputeNext
// when an increment is needed but none was requested.
var ErrInvalidBump = errors.New("invalid version bump")

// Bump selects which semantic version component to increment.
type Bump int

// ParseBump maps "major", "minor", "patch" and "" (or "none") to a Bump.
func ParseBump(s string) (Bump, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BumpNone, nil
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	default:
		return BumpNone, fmt.Errorf("%w: %q", ErrInvalidBump, s)
	}
}

// String returns the lower-case bump name.
func (b Bump) String() string {
	switch b {
	case BumpNone:
		return "none"
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return fmt.Sprintf("Bump(%d)", int(b))
	}
}
