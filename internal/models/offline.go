package models

import "time"

// OfflineState is the phase of the bulk "download everything" cycle.
type OfflineState string

const (
	StateNotStarted OfflineState = "not_started"
	StateInProgress OfflineState = "in_progress"
	StateComplete   OfflineState = "complete"
	StateError      OfflineState = "error"
)

// OfflineStatus is the process-wide record of offline data readiness.
// It is persisted in the status table under OfflineStatusKey.
type OfflineStatus struct {
	State     OfflineState `json:"state"`
	Percent   int          `json:"percent"`
	Message   string       `json:"message,omitempty"`
	Failed    int          `json:"failed,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Status table keys.
const (
	OfflineStatusKey  = "offline_status"
	ContentVersionKey = "content_version"
)

// Available reports whether the offline corpus is fully downloaded.
func (s OfflineStatus) Available() bool {
	return s.State == StateComplete
}

// CanTransition reports whether moving from s to next is allowed.
// A fresh prefetch may restart the cycle from any state, so entering
// in_progress at 0% is always allowed; within a run the percent never decreases.
func (s OfflineStatus) CanTransition(next OfflineStatus) bool {
	switch next.State {
	case StateNotStarted:
		return true
	case StateInProgress:
		if s.State == StateInProgress {
			return next.Percent >= s.Percent || next.Percent == 0
		}
		return true
	case StateComplete, StateError:
		return s.State == StateInProgress
	}
	return false
}
