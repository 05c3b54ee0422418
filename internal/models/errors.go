package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the upstream could not be reached or failed at the HTTP layer.
	// Callers may retry later.
	ErrTransport = errors.New("upstream transport failure")
	// ErrNotFound means the upstream explicitly reported that the item does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrStorageUnavailable means the persistent store could not be used.
	ErrStorageUnavailable = errors.New("persistent storage unavailable")
	// ErrPrefetchRunning is returned when a bulk prefetch is already in flight.
	ErrPrefetchRunning = errors.New("offline prefetch already running")
)

// UpstreamError describes a failed call to a content provider.
type UpstreamError struct {
	Provider   string
	Op         string
	StatusCode int
	Kind       error // ErrTransport or ErrNotFound
	Cause      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

func (e *UpstreamError) Is(target error) bool {
	return target == e.Kind
}

// PartialPrefetchError reports a bulk prefetch that finished with failed items.
// Records written before and after the failures remain valid.
type PartialPrefetchError struct {
	Failed int
	Total  int
	Errors []error
}

func (e *PartialPrefetchError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("offline prefetch finished with %d of %d items failed (first: %v)", e.Failed, e.Total, e.Errors[0])
	}
	return fmt.Sprintf("offline prefetch finished with %d of %d items failed", e.Failed, e.Total)
}

func (e *PartialPrefetchError) Unwrap() []error {
	return e.Errors
}
