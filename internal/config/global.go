// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests to override the config directory, since
// os.UserHomeDir does not reliably respect HOME on every platform.
//
//nolint:gochecknoglobals // Test seam.
var configDirOverride string

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
