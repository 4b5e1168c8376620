// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
)

// SessionEvent is published on ports.TopicSessionEvents for every delegate
// callback.
type SessionEvent struct {
	Session  string          `json:"session"`
	Kind     string          `json:"kind"`
	State    model.StateKind `json:"state,omitempty"`
	Depth    int             `json:"depth,omitempty"`
	Error    string          `json:"error,omitempty"`
	Advisory *model.Advisory `json:"advisory,omitempty"`
	At       time.Time       `json:"at"`
}

type tryPublisher interface {
	TryPublish(topic string, msg interface{}) error
}

// BusDelegate forwards callbacks to next and mirrors them onto the bus.
// Publishing never blocks the session.
type BusDelegate struct {
	pub  tryPublisher
	next ports.Delegate
}

func NewBusDelegate(pub tryPublisher, next ports.Delegate) *BusDelegate {
	if next == nil {
		next = noopDelegate{}
	}
	return &BusDelegate{pub: pub, next: next}
}

func (d *BusDelegate) emit(ev SessionEvent) {
	ev.At = time.Now()
	_ = d.pub.TryPublish(ports.TopicSessionEvents, ev)
}

func (d *BusDelegate) WillChangeState(id string, to model.StateKind) {
	d.next.WillChangeState(id, to)
	d.emit(SessionEvent{Session: id, Kind: "will_change_state", State: to})
}

func (d *BusDelegate) DidChangeState(id string, to model.StateKind) {
	d.next.DidChangeState(id, to)
	d.emit(SessionEvent{Session: id, Kind: "did_change_state", State: to})
}

func (d *BusDelegate) DidFail(id string, err *model.SessionError) {
	d.next.DidFail(id, err)
	d.emit(SessionEvent{Session: id, Kind: "did_fail", Error: err.Error()})
}

func (d *BusDelegate) Advise(id string, adv model.Advisory) {
	d.next.Advise(id, adv)
	d.emit(SessionEvent{Session: id, Kind: "advise", Advisory: &adv})
}

func (d *BusDelegate) WillPlayArchive(id string, depth int) {
	d.next.WillPlayArchive(id, depth)
	d.emit(SessionEvent{Session: id, Kind: "will_play_archive", Depth: depth})
}

func (d *BusDelegate) FinishedPlayingArchive(id string, depth int) {
	d.next.FinishedPlayingArchive(id, depth)
	d.emit(SessionEvent{Session: id, Kind: "finished_playing_archive", Depth: depth})
}

func (d *BusDelegate) WillStreamLive(id string) {
	d.next.WillStreamLive(id)
	d.emit(SessionEvent{Session: id, Kind: "will_stream_live"})
}

func (d *BusDelegate) FinishedLiveStreaming(id string) {
	d.next.FinishedLiveStreaming(id)
	d.emit(SessionEvent{Session: id, Kind: "finished_live_streaming"})
}

func (d *BusDelegate) WillShutdown(id string) {
	d.next.WillShutdown(id)
	d.emit(SessionEvent{Session: id, Kind: "will_shutdown"})
}

var _ ports.Delegate = (*BusDelegate)(nil)

type noopPlayer struct{}

func (noopPlayer) SetControlsEnabled(bool)           {}
func (noopPlayer) Refreshed()                        {}
func (noopPlayer) PlayLive(string)                   {}
func (noopPlayer) PlayArchive(int)                   {}
func (noopPlayer) Pause()                            {}
func (noopPlayer) Stop()                             {}
func (noopPlayer) ShowFrame([]byte)                  {}
func (noopPlayer) ShowSecurityMarker(string)         {}
func (noopPlayer) ShowDescription(model.Description) {}

type noopDelegate struct{}

func (noopDelegate) WillChangeState(string, model.StateKind) {}
func (noopDelegate) DidChangeState(string, model.StateKind)  {}
func (noopDelegate) DidFail(string, *model.SessionError)     {}
func (noopDelegate) Advise(string, model.Advisory)           {}
func (noopDelegate) WillPlayArchive(string, int)             {}
func (noopDelegate) FinishedPlayingArchive(string, int)      {}
func (noopDelegate) WillStreamLive(string)                   {}
func (noopDelegate) FinishedLiveStreaming(string)            {}
func (noopDelegate) WillShutdown(string)                     {}
