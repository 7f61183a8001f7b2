package matching

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ranking error taxonomy. Callers match them with
// errors.Is; every concrete error also carries the mission id for
// traceability.
var (
	ErrMissionNotFound  = errors.New("mission not found")
	ErrInvalidInput     = errors.New("invalid ranking input")
	ErrDeadlineExceeded = errors.New("ranking deadline exceeded")
	ErrUpstream         = errors.New("upstream source failure")
)

// NotFoundError indicates the requested mission does not exist.
type NotFoundError struct {
	MissionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mission %s not found", e.MissionID)
}

func (e *NotFoundError) Unwrap() error { return ErrMissionNotFound }

// InvalidInputError indicates a caller-supplied option was rejected, such as
// a non-positive limit or radius.
type InvalidInputError struct {
	MissionID string
	Reason    string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for mission %s: %s", e.MissionID, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// TimeoutError indicates the ranking deadline expired before completion.
// The call fails atomically; no partial ranking is returned.
type TimeoutError struct {
	MissionID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ranking for mission %s exceeded its deadline", e.MissionID)
}

func (e *TimeoutError) Unwrap() error { return ErrDeadlineExceeded }

// UpstreamError wraps a collaborator failure. The underlying error is
// propagated unmodified and not retried inside the engine; retry policy
// belongs to the caller.
type UpstreamError struct {
	MissionID string
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure for mission %s: %v", e.MissionID, e.Err)
}

// Is matches the ErrUpstream sentinel.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }
