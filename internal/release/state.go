// SPDX-License-Identifier: MPL-2.0

package release

import "fmt"

// Publish states.
const (
	StateIdle State = iota
	StateUploaded
	StateDone
	StateResolvingVersion
	StateGated
	StateAborted
	StateProceeding
	StateReleasing
	StateReleased
	StateFailed
)

// State is a step of a publish.
type State int

//nolint:gochecknoglobals // Static transition table.
var transitions = map[State][]State{
	StateIdle:             {StateUploaded, StateFailed},
	StateUploaded:         {StateDone, StateResolvingVersion},
	StateResolvingVersion: {StateGated, StateReleasing, StateFailed},
	StateGated:            {StateAborted, StateProceeding, StateFailed},
	StateProceeding:       {StateReleasing},
	StateReleasing:        {StateReleased, StateFailed},
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploaded:
		return "uploaded"
	case StateDone:
		return "done"
	case StateResolvingVersion:
		return "resolving-version"
	case StateGated:
		return "gated"
	case StateAborted:
		return "aborted"
	case StateProceeding:
		return "proceeding"
	case StateReleasing:
		return "releasing"
	case StateReleased:
		return "released"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransition reports whether a publish may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
