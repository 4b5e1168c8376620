// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// maxChain bounds auto-transitions triggered by a single event.
const maxChain = 16

// Limits are the per-session budgets and pacing knobs.
type Limits struct {
	MaxConnectionAttempts int
	MaxStreamingAttempts  int
	MaxArchiveAttempts    int
	// ArchiveStep is the seek granularity in seconds.
	ArchiveStep      int
	ViewModeInterval time.Duration
	BackgroundBudget time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxConnectionAttempts: 3,
		MaxStreamingAttempts:  3,
		MaxArchiveAttempts:    3,
		ArchiveStep:           10,
		ViewModeInterval:      time.Second,
		BackgroundBudget:      time.Minute,
	}
}

// Snapshot is everything the machine needs besides the event. It is a value;
// Apply never mutates the caller's copy.
type Snapshot struct {
	State   model.State
	Device  *model.Device
	Archive *model.ArchiveControl
	Budgets model.Budgets

	BackgroundedAt     time.Time
	PausedByBackground bool
}

// Outcome is the result of applying one event.
type Outcome struct {
	Next    Snapshot
	Effects []Effect
	// Path lists the state kinds entered, in order, including restores.
	Path []model.StateKind
	// Dropped is set when the event had no effect in the current state.
	Dropped bool
	Faults  []error
}

type machine struct {
	snap Snapshot
	lim  Limits
	at   time.Time
	out  Outcome
	// held is set while a playback state entered in the background is
	// being redirected to Paused.
	held bool
}

// Apply feeds ev to the state machine. It is pure: the same inputs always
// produce the same Outcome.
func Apply(s Snapshot, ev Event, lim Limits) Outcome {
	m := &machine{snap: s, lim: lim, at: ev.At}
	next := m.route(ev)
	if next != nil {
		m.transition(next)
	}
	m.out.Next = m.snap
	m.out.Dropped = next == nil && len(m.out.Effects) == 0 && snapshotEqual(s, m.snap)
	return m.out
}

func (m *machine) emit(fx Effect) {
	m.out.Effects = append(m.out.Effects, fx)
}

func (m *machine) notify(n Notification) {
	m.emit(Effect{Kind: FxNotify, Note: n})
}

func (m *machine) fault(err error) {
	m.out.Faults = append(m.out.Faults, err)
}

func (m *machine) transition(next model.State) {
	for hops := 0; next != nil; hops++ {
		if hops >= maxChain {
			m.fault(fmt.Errorf("%w: %d hops ending at %s", ErrChainTooLong, hops, next.Kind()))
			return
		}
		prior := m.snap.State
		from := model.KindOf(prior)
		if d, ok := DecisionFor(from, next.Kind()); !ok || !d.Allowed {
			next = m.illegal(from, next.Kind(), d.Reason)
			continue
		}

		m.notify(Notification{Kind: NoteWillChangeState, State: next.Kind()})
		m.snap.State = next
		m.out.Path = append(m.out.Path, next.Kind())
		m.playbackNotes(prior, next)
		st := m.enter(prior, next)
		m.notify(Notification{Kind: NoteDidChangeState, State: next.Kind()})

		if st.restore {
			m.restore(st.next)
			return
		}
		next = st.next
	}
}

// restore puts back a prior state after a failure without its entry effects.
// Only the keep-alive intent is re-published.
func (m *machine) restore(prior model.State) {
	if prior == nil {
		return
	}
	from := model.KindOf(m.snap.State)
	if !isAllowed(from, prior.Kind()) {
		m.fault(illegalTransition(from, prior.Kind(), ForbiddenTransitionReason(from, prior.Kind())))
		return
	}
	m.notify(Notification{Kind: NoteWillChangeState, State: prior.Kind()})
	m.snap.State = prior
	m.out.Path = append(m.out.Path, prior.Kind())
	m.intent(prior)
	m.notify(Notification{Kind: NoteDidChangeState, State: prior.Kind()})
}

// illegal records a forbidden transition and returns the Failed state to
// enter instead, or nil when even that is not possible.
func (m *machine) illegal(from, to model.StateKind, reason string) model.State {
	err := illegalTransition(from, to, reason)
	m.fault(err)
	if m.snap.State == nil || !isAllowed(from, model.StateFailed) {
		return nil
	}
	return model.Failed{
		Prior: m.snap.State,
		Err:   model.NewError(model.EStateTransitionFault, from.String()+"->"+to.String(), err),
	}
}

func (m *machine) inWindow(depth int) bool {
	return m.snap.Archive != nil && m.snap.Archive.Contains(depth)
}

func (m *machine) resetBudgets() {
	m.snap.Budgets = model.Budgets{
		Connection: m.lim.MaxConnectionAttempts,
		Streaming:  m.lim.MaxStreamingAttempts,
		Archive:    m.lim.MaxArchiveAttempts,
	}
}

func (m *machine) fail(prior model.State, kind model.ErrorKind, op string, cause error) model.State {
	return model.Failed{Prior: prior, Err: model.NewError(kind, op, cause)}
}

func snapshotEqual(a, b Snapshot) bool {
	return a.State == b.State &&
		a.Device == b.Device &&
		a.Archive == b.Archive &&
		a.Budgets == b.Budgets &&
		a.BackgroundedAt.Equal(b.BackgroundedAt) &&
		a.PausedByBackground == b.PausedByBackground
}
