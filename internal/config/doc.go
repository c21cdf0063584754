// SPDX-License-Identifier: MPL-2.0

// Package config loads crux settings with Viper, using CUE as the file format.
//
// The configuration file is config.cue in the platform config directory
// ($XDG_CONFIG_HOME/crux on Linux, ~/Library/Application Support/crux on
// macOS, %APPDATA%\crux on Windows), falling back to ./config.cue. Files are
// validated against the embedded config_schema.cue before they are merged
// over the defaults. Environment variables prefixed with CRUX_ override
// file values, e.g. CRUX_BASE_URL or CRUX_HTTP_TIMEOUT.
package config
