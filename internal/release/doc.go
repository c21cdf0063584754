// SPDX-License-Identifier: MPL-2.0

// Package release publishes content to a registry and, when asked, releases
// it under a new tag of an alias.
//
// A Publisher drives one publish as a forward-only state machine:
//
//	Idle -> Uploaded -> Done
//	                 -> ResolvingVersion -> Releasing -> Released | Failed
//	                                     -> Gated -> Aborted
//	                                              -> Proceeding -> Releasing
//
// Any step may instead end in Failed. Each transition is reported to the
// configured Observer. The gate stops before re-releasing the script that the
// current tag already points to unless a Confirmer approves it.
package release
