// SPDX-License-Identifier: MPL-2.0

package release

import "github.com/cruxland/crux/internal/version"

// ShouldConfirm reports whether releasing nextScriptRef needs explicit
// confirmation, which is the case when the current tag already points to
// the same script. There is nothing to confirm for a first release.
func ShouldConfirm(current *version.Current, nextScriptRef string) bool {
	if current == nil {
		return false
	}
	return current.ScriptRef == nextScriptRef
}
