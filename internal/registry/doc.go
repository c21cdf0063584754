// SPDX-License-Identifier: MPL-2.0

// Package registry defines the contract between crux and a remote alias
// registry, and provides the HTTP adapter for crux.land compatible
// services.
//
// The package is organized into three concerns:
//   - registry.go: the Registry interface, wire-independent types and errors
//   - client.go: HTTP adapter speaking the crux.land JSON API
//   - url.go: base URL normalization and script/alias URL construction
//
// The registrytest subpackage provides an in-memory Registry for tests.
package registry
