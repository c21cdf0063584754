// SPDX-License-Identifier: MPL-2.0

// Package version resolves alias versions. It selects the current tag of an
// alias from a registry snapshot using semantic version precedence and
// computes the next tag for a requested bump.
//
// Tags are plain semantic versions without a "v" prefix, e.g. "1.4.0" or
// "2.0.0-rc.1". Validity and precedence come from golang.org/x/mod/semver;
// increments are computed here because they drop prerelease and build
// metadata, which that package does not do.
package version
