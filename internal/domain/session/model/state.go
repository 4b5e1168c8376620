// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"fmt"
	"time"
)

// StateKind is the tag of a State variant. StateNone stands for "no prior state".
type StateKind int

const (
	StateNone StateKind = iota
	StateInitial
	StateConnecting
	StateConnected
	StateStreaming
	StatePaused
	StatePlayingArchive
	StateStopped
	StateFailed
	StateInvalidated
)

// AllStateKinds lists every kind including StateNone, in declaration order.
var AllStateKinds = []StateKind{
	StateNone,
	StateInitial,
	StateConnecting,
	StateConnected,
	StateStreaming,
	StatePaused,
	StatePlayingArchive,
	StateStopped,
	StateFailed,
	StateInvalidated,
}

func (k StateKind) String() string {
	switch k {
	case StateNone:
		return "none"
	case StateInitial:
		return "initial"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateStreaming:
		return "streaming"
	case StatePaused:
		return "paused"
	case StatePlayingArchive:
		return "playing_archive"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	case StateInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("state(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsTerminal reports whether no further playback can happen without a refresh.
func (k StateKind) IsTerminal() bool {
	return k == StateStopped || k == StateInvalidated
}

// State is a closed set of session states. Only the variants in this file
// implement it.
type State interface {
	Kind() StateKind
	isState()
}

// KindOf returns the kind of s, or StateNone for a nil state.
func KindOf(s State) StateKind {
	if s == nil {
		return StateNone
	}
	return s.Kind()
}

type Initial struct{}

type Connecting struct {
	TriesLeft int
}

type Connected struct {
	Device Device
}

// Streaming is live playback, either decoded video or view-mode still polling.
// ArchiveDepth is the offset from live and stays 0 while streaming.
type Streaming struct {
	StreamURL        string
	TriesLeft        int
	ArchiveDepth     int
	ViewMode         bool
	ViewModeInterval time.Duration
}

// Paused keeps what is needed to resume. A negative ArchiveDepth means the
// pause happened during archive playback.
type Paused struct {
	StreamURL        string
	ArchiveDepth     int
	ViewMode         bool
	ViewModeInterval time.Duration
}

// PlayingArchive plays recorded video DepthSeconds behind the live edge
// (always negative).
type PlayingArchive struct {
	DepthSeconds     int
	LiveStreamURL    string
	ViewMode         bool
	ViewModeInterval time.Duration
}

type Stopped struct{}

// Failed carries the state to resume or roll back to, and the classified error.
type Failed struct {
	Prior State
	Err   *SessionError
}

type Invalidated struct{}

func (Initial) Kind() StateKind        { return StateInitial }
func (Connecting) Kind() StateKind     { return StateConnecting }
func (Connected) Kind() StateKind      { return StateConnected }
func (Streaming) Kind() StateKind      { return StateStreaming }
func (Paused) Kind() StateKind         { return StatePaused }
func (PlayingArchive) Kind() StateKind { return StatePlayingArchive }
func (Stopped) Kind() StateKind        { return StateStopped }
func (Failed) Kind() StateKind         { return StateFailed }
func (Invalidated) Kind() StateKind    { return StateInvalidated }

func (Initial) isState()        {}
func (Connecting) isState()     {}
func (Connected) isState()      {}
func (Streaming) isState()      {}
func (Paused) isState()         {}
func (PlayingArchive) isState() {}
func (Stopped) isState()        {}
func (Failed) isState()         {}
func (Invalidated) isState()    {}

// Budgets holds the remaining attempts per failure class.
type Budgets struct {
	Connection int `json:"connection"`
	Streaming  int `json:"streaming"`
	Archive    int `json:"archive"`
}
