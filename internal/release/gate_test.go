// SPDX-License-Identifier: MPL-2.0

package release

import (
	"testing"

	"github.com/cruxland/crux/internal/version"
)

func TestShouldConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current *version.Current
		next    string
		want    bool
	}{
		{name: "first release", current: nil, next: "a.ts", want: false},
		{name: "same script", current: &version.Current{Tag: "0.1.0", ScriptRef: "a.ts"}, next: "a.ts", want: true},
		{name: "new script", current: &version.Current{Tag: "0.1.0", ScriptRef: "a.ts"}, next: "b.ts", want: false},
	}
	for _, tt := range tests {
		if got := ShouldConfirm(tt.current, tt.next); got != tt.want {
			t.Errorf("%s: ShouldConfirm = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StateDone, StateAborted, StateReleased, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateUploaded, StateResolvingVersion, StateGated, StateProceeding, StateReleasing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if StateReleased.CanTransition(StateReleasing) {
		t.Error("released must not move backwards")
	}
	if !StateGated.CanTransition(StateAborted) {
		t.Error("gated must be able to abort")
	}
	if got := State(99).String(); got != "State(99)" {
		t.Errorf("unknown state String() = %q", got)
	}
}
