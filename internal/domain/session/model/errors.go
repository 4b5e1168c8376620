// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable code for a session failure. Values are safe to use as
// metric labels.
type ErrorKind string

const (
	ENone                    ErrorKind = ""
	EConnectionFailed        ErrorKind = "connection_failed"
	EConnectionRetryExceeded ErrorKind = "connection_retry_exceeded"
	ENoStreamingURL          ErrorKind = "no_streaming_url"
	EStreamingFailed         ErrorKind = "streaming_failed"
	EStreamingRetryExceeded  ErrorKind = "streaming_retry_exceeded"
	EArchivePlaybackFailed   ErrorKind = "archive_playback_failed"
	EArchiveRetryExceeded    ErrorKind = "archive_retry_exceeded"
	ESnapshotPreloadFailed   ErrorKind = "snapshot_preload_failed"
	EArchiveSnapshotFailed   ErrorKind = "archive_snapshot_failed"
	EDescriptionFetchFailed  ErrorKind = "description_fetch_failed"
	EArchiveBoundsFailed     ErrorKind = "archive_bounds_failed"
	ESecurityMarkerFailed    ErrorKind = "security_marker_failed"
	EViewModeSnapshotFailed  ErrorKind = "view_mode_snapshot_failed"
	EUnauthorized            ErrorKind = "unauthorized"
	EKeepAliveStopped        ErrorKind = "keepalive_stopped"
	EBackgroundTimeout       ErrorKind = "background_timeout"
	EStateTransitionFault    ErrorKind = "state_transition_fault"
)

// ErrorClass groups kinds by how the session reacts to them.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassRetryable
	ClassRetryExceeded
	ClassSoft
	ClassTerminal
	ClassTransitionFault
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Class sentinels. errors.Is(err, ErrSoftFailure) holds for every
// *SessionError of a soft kind, and likewise for the other classes.
var (
	ErrRetryable       = errors.New("retryable failure")
	ErrRetryExceeded   = errors.New("retry budget exhausted")
	ErrSoftFailure     = errors.New("soft failure")
	ErrTerminal        = errors.New("terminal failure")
	ErrTransitionFault = errors.New("state transition fault")
)

type kindInfo struct {
	class    ErrorClass
	severity Severity
	message  string
}

var kinds = map[ErrorKind]kindInfo{
	EConnectionFailed:        {ClassRetryable, SeverityWarning, "could not connect to the camera, retrying"},
	EConnectionRetryExceeded: {ClassRetryExceeded, SeverityError, "could not connect to the camera"},
	ENoStreamingURL:          {ClassTerminal, SeverityError, "the camera does not provide a live stream"},
	EStreamingFailed:         {ClassRetryable, SeverityWarning, "live playback interrupted, restarting"},
	EStreamingRetryExceeded:  {ClassRetryExceeded, SeverityError, "live playback keeps failing"},
	EArchivePlaybackFailed:   {ClassRetryable, SeverityWarning, "archive playback failed, stepping back"},
	EArchiveRetryExceeded:    {ClassRetryExceeded, SeverityError, "archive playback keeps failing"},
	ESnapshotPreloadFailed:   {ClassSoft, SeverityInfo, "preview image unavailable"},
	EArchiveSnapshotFailed:   {ClassSoft, SeverityInfo, "archive image unavailable"},
	EDescriptionFetchFailed:  {ClassSoft, SeverityInfo, "camera description unavailable"},
	EArchiveBoundsFailed:     {ClassSoft, SeverityWarning, "archive is currently unavailable"},
	ESecurityMarkerFailed:    {ClassSoft, SeverityInfo, "security marker unavailable"},
	EViewModeSnapshotFailed:  {ClassSoft, SeverityInfo, "image refresh failed"},
	EUnauthorized:            {ClassTerminal, SeverityError, "access to the camera was denied"},
	EKeepAliveStopped:        {ClassTerminal, SeverityError, "the server ended the viewing session"},
	EBackgroundTimeout:       {ClassTerminal, SeverityInfo, "session ended while in background"},
	EStateTransitionFault:    {ClassTransitionFault, SeverityWarning, "internal playback error"},
}

// AllErrorKinds lists every non-empty kind.
var AllErrorKinds = []ErrorKind{
	EConnectionFailed,
	EConnectionRetryExceeded,
	ENoStreamingURL,
	EStreamingFailed,
	EStreamingRetryExceeded,
	EArchivePlaybackFailed,
	EArchiveRetryExceeded,
	ESnapshotPreloadFailed,
	EArchiveSnapshotFailed,
	EDescriptionFetchFailed,
	EArchiveBoundsFailed,
	ESecurityMarkerFailed,
	EViewModeSnapshotFailed,
	EUnauthorized,
	EKeepAliveStopped,
	EBackgroundTimeout,
	EStateTransitionFault,
}

func (k ErrorKind) Class() ErrorClass   { return kinds[k].class }
func (k ErrorKind) Severity() Severity  { return kinds[k].severity }
func (k ErrorKind) Message() string     { return kinds[k].message }
func (k ErrorKind) IsSoft() bool        { return k.Class() == ClassSoft }
func (k ErrorKind) ExhaustsBudget() bool { return k.Class() == ClassRetryExceeded }

// IsTerminal reports whether the session cannot continue after this kind.
func (k ErrorKind) IsTerminal() bool {
	c := k.Class()
	return c == ClassTerminal || c == ClassRetryExceeded
}

func (c ErrorClass) sentinel() error {
	switch c {
	case ClassRetryable:
		return ErrRetryable
	case ClassRetryExceeded:
		return ErrRetryExceeded
	case ClassSoft:
		return ErrSoftFailure
	case ClassTerminal:
		return ErrTerminal
	case ClassTransitionFault:
		return ErrTransitionFault
	default:
		return nil
	}
}

// SessionError is the classified error carried by a Failed state.
type SessionError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError builds a SessionError for kind, wrapping cause (which may be nil).
func NewError(kind ErrorKind, op string, cause error) *SessionError {
	return &SessionError{Kind: kind, Op: op, Err: cause}
}

func (e *SessionError) Error() string {
	msg := e.Kind.Message()
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("session: %s: %s: %v", e.Op, msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("session: %s: %s", e.Op, msg)
	case e.Err != nil:
		return fmt.Sprintf("session: %s: %v", msg, e.Err)
	default:
		return "session: " + msg
	}
}

func (e *SessionError) Unwrap() error { return e.Err }

// Is matches the class sentinel of the error kind.
func (e *SessionError) Is(target error) bool {
	if s := e.Kind.Class().sentinel(); s != nil && target == s {
		return true
	}
	if t, ok := target.(*SessionError); ok {
		return t.Kind == e.Kind
	}
	return false
}

// KindOfError extracts the kind of err or ENone.
func KindOfError(err error) ErrorKind {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ENone
}

// Advisory is a human-readable message pushed to the host.
type Advisory struct {
	Severity Severity  `json:"severity"`
	Kind     ErrorKind `json:"kind,omitempty"`
	Message  string    `json:"message"`
}

// AdvisoryFor returns the advisory shown for err.
func AdvisoryFor(err *SessionError) Advisory {
	return Advisory{Severity: err.Kind.Severity(), Kind: err.Kind, Message: err.Kind.Message()}
}
