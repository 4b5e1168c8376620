// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"testing"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

var testDevice = model.Device{ID: "cam-1", Name: "Gate", LiveURL: "rtsp://vss.local/live/cam-1"}

func apply(t *testing.T, s Snapshot, ev Event) (Snapshot, Outcome) {
	t.Helper()
	if ev.At.IsZero() {
		ev.At = t0
	}
	out := Apply(s, ev, DefaultLimits())
	return out.Next, out
}

func started(t *testing.T) Snapshot {
	t.Helper()
	s, out := apply(t, Snapshot{}, Event{Kind: EvStart})
	require.Equal(t, []model.StateKind{model.StateInitial, model.StateConnecting}, out.Path)
	return s
}

func streaming(t *testing.T) Snapshot {
	t.Helper()
	s := started(t)
	s, _ = apply(t, s, Event{Kind: EvConnectSucceeded, Device: testDevice})
	s, _ = apply(t, s, Event{Kind: EvArchiveControlLoaded, Archive: model.ArchiveControl{Start: t0.Add(-time.Hour), End: t0}})
	require.Equal(t, model.StateStreaming, model.KindOf(s.State))
	return s
}

func archive(t *testing.T, depth int) Snapshot {
	t.Helper()
	s, out := apply(t, streaming(t), Event{Kind: EvPlayArchive, Depth: depth})
	require.Equal(t, []model.StateKind{model.StatePlayingArchive}, out.Path)
	return s
}

func effectsOf(out Outcome, kind EffectKind) []Effect {
	var res []Effect
	for _, fx := range out.Effects {
		if fx.Kind == kind {
			res = append(res, fx)
		}
	}
	return res
}

func notesOf(out Outcome) []NoteKind {
	var res []NoteKind
	for _, fx := range effectsOf(out, FxNotify) {
		switch fx.Note.Kind {
		case NoteWillChangeState, NoteDidChangeState:
		default:
			res = append(res, fx.Note.Kind)
		}
	}
	return res
}

func didFailKind(t *testing.T, out Outcome) model.ErrorKind {
	t.Helper()
	fails := effectsOf(out, FxDidFail)
	require.Len(t, fails, 1)
	return model.KindOfError(fails[0].Err)
}

func TestStart_EntersConnectingWithFullBudgets(t *testing.T) {
	s, out := apply(t, Snapshot{}, Event{Kind: EvStart})

	assert.Equal(t, model.Connecting{TriesLeft: 3}, s.State)
	assert.Equal(t, model.Budgets{Connection: 3, Streaming: 3, Archive: 3}, s.Budgets)
	connects := effectsOf(out, FxConnect)
	require.Len(t, connects, 1)
	assert.Equal(t, 0, connects[0].Attempt)
	assert.Empty(t, effectsOf(out, FxRefreshed))
	assert.Empty(t, out.Faults)
}

func TestConnectSucceeded_StartsLiveStream(t *testing.T) {
	s, out := apply(t, started(t), Event{Kind: EvConnectSucceeded, Device: testDevice})

	want := []EffectKind{
		FxNotify, FxKeepAlive,
		FxFetchArchiveControl, FxFetchLiveSnapshot, FxFetchSecurityMarker, FxFetchDescription,
		FxNotify,
		FxNotify, FxNotify, FxSetControls, FxPlayLive, FxKeepAlive, FxNotify,
	}
	if diff := cmp.Diff(want, Kinds(out.Effects)); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []model.StateKind{model.StateConnected, model.StateStreaming}, out.Path)
	assert.Equal(t, model.Streaming{StreamURL: testDevice.LiveURL, TriesLeft: 3, ViewModeInterval: time.Second}, s.State)
	assert.Equal(t, testDevice.LiveURL, effectsOf(out, FxPlayLive)[0].URL)
	assert.Equal(t, []NoteKind{NoteWillStreamLive}, notesOf(out))
	require.NotNil(t, s.Device)
	assert.Equal(t, testDevice, *s.Device)
}

func TestConnectSucceeded_OutsideConnectingIsDropped(t *testing.T) {
	s := streaming(t)
	next, out := apply(t, s, Event{Kind: EvConnectSucceeded, Device: testDevice})
	assert.True(t, out.Dropped)
	assert.Equal(t, s.State, next.State)
}

func TestNoStreamingURL_Stops(t *testing.T) {
	s, out := apply(t, started(t), Event{Kind: EvConnectSucceeded, Device: model.Device{ID: "cam-2"}})

	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.ENoStreamingURL, didFailKind(t, out))
	assert.Empty(t, effectsOf(out, FxFetchArchiveControl))
}

func TestConnectionBudget_ExhaustedAfterExactlyN(t *testing.T) {
	s := started(t)
	for i := 1; i < 3; i++ {
		var out Outcome
		s, out = apply(t, s, Event{Kind: EvConnectFailed})
		require.Equal(t, model.Connecting{TriesLeft: 3 - i}, s.State, "after failure %d", i)
		require.Equal(t, []model.StateKind{model.StateFailed, model.StateConnecting}, out.Path)
		assert.Equal(t, i, effectsOf(out, FxConnect)[0].Attempt)
		assert.Len(t, effectsOf(out, FxRefreshed), 1)
		assert.Len(t, effectsOf(out, FxAdvise), 1)
		assert.Empty(t, effectsOf(out, FxDidFail))
	}

	s, out := apply(t, s, Event{Kind: EvConnectFailed})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, []model.StateKind{
		model.StateFailed, model.StateConnecting, model.StateFailed, model.StateStopped,
	}, out.Path)
	assert.Equal(t, model.EConnectionRetryExceeded, didFailKind(t, out))
	assert.Empty(t, effectsOf(out, FxConnect))
	assert.Zero(t, s.Budgets.Connection)
}

func TestConnectFailed_UnauthorizedStopsImmediately(t *testing.T) {
	s, out := apply(t, started(t), Event{Kind: EvConnectFailed, ErrKind: model.EUnauthorized})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EUnauthorized, didFailKind(t, out))
}

func TestStreamingBudget_ExhaustedAfterM(t *testing.T) {
	s := streaming(t)
	for i := 1; i < 3; i++ {
		var out Outcome
		s, out = apply(t, s, Event{Kind: EvPlaybackFailed})
		st, ok := s.State.(model.Streaming)
		require.True(t, ok)
		assert.Equal(t, 3-i, st.TriesLeft)
		assert.Len(t, effectsOf(out, FxPlayLive), 1, "playback restarts")
		assert.Empty(t, notesOf(out))
	}
	s, out := apply(t, s, Event{Kind: EvPlaybackFailed})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EStreamingRetryExceeded, didFailKind(t, out))
	assert.Contains(t, notesOf(out), NoteFinishedLiveStreaming)
}

func TestSoftFailure_RollsBackWithoutReentry(t *testing.T) {
	s := streaming(t)
	next, out := apply(t, s, Event{Kind: EvSideRequestFailed, ErrKind: model.ESnapshotPreloadFailed, Op: "live_snapshot"})

	assert.Equal(t, s.State, next.State)
	assert.Equal(t, []model.StateKind{model.StateFailed, model.StateStreaming}, out.Path)
	assert.Len(t, effectsOf(out, FxAdvise), 1)
	assert.Empty(t, effectsOf(out, FxPlayLive))
	assert.Empty(t, effectsOf(out, FxSetControls))

	intents := effectsOf(out, FxKeepAlive)
	require.Len(t, intents, 2)
	assert.Equal(t, model.KeepAliveError, intents[0].Entry.State)
	assert.Equal(t, model.KeepAliveEntry{Mode: model.ModeLiveVideo, State: model.KeepAlivePlaying}, intents[1].Entry)
}

func TestSoftFailure_UnauthorizedIsTerminal(t *testing.T) {
	s, out := apply(t, streaming(t), Event{Kind: EvSideRequestFailed, ErrKind: model.EUnauthorized})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EUnauthorized, didFailKind(t, out))
}

func TestPlayArchive_EntersArchive(t *testing.T) {
	s, out := apply(t, streaming(t), Event{Kind: EvPlayArchive, Depth: -30})

	assert.Equal(t, model.PlayingArchive{
		DepthSeconds:     -30,
		LiveStreamURL:    testDevice.LiveURL,
		ViewModeInterval: time.Second,
	}, s.State)
	assert.Equal(t, []NoteKind{NoteFinishedLiveStreaming, NoteWillPlayArchive}, notesOf(out))
	assert.Equal(t, -30, effectsOf(out, FxPlayArchive)[0].Depth)

	intent := effectsOf(out, FxKeepAlive)[0].Entry
	assert.Equal(t, model.ModeArchiveVideo, intent.Mode)
	require.NotNil(t, intent.Archive)
	assert.Equal(t, t0.Add(-30*time.Second), intent.Archive.Position)
	assert.Equal(t, 1.0, intent.Archive.Scale)
}

func TestPlayArchive_OutOfWindowAndUnknownBoundsAreDropped(t *testing.T) {
	_, out := apply(t, streaming(t), Event{Kind: EvPlayArchive, Depth: -3601})
	assert.True(t, out.Dropped)

	s := started(t)
	s, _ = apply(t, s, Event{Kind: EvConnectSucceeded, Device: testDevice})
	_, out = apply(t, s, Event{Kind: EvPlayArchive, Depth: -10})
	assert.True(t, out.Dropped, "bounds unknown")

	_, out = apply(t, archive(t, -20), Event{Kind: EvPlayArchive, Depth: -20})
	assert.True(t, out.Dropped, "same depth")
}

func TestPlayArchive_AtOrPastLiveEdgeResumesLive(t *testing.T) {
	s, out := apply(t, archive(t, -20), Event{Kind: EvPlayArchive, Depth: 5})
	st, ok := s.State.(model.Streaming)
	require.True(t, ok)
	assert.Equal(t, 3, st.TriesLeft)
	assert.Equal(t, []NoteKind{NoteFinishedPlayingArchive, NoteWillStreamLive}, notesOf(out))
	assert.Len(t, effectsOf(out, FxPlayLive), 1)
}

func TestArchiveFailure_StepsBack(t *testing.T) {
	s, out := apply(t, archive(t, -30), Event{Kind: EvArchivePlaybackFailed})

	assert.Equal(t, -40, s.State.(model.PlayingArchive).DepthSeconds)
	assert.Equal(t, 2, s.Budgets.Archive)
	assert.Equal(t, []model.StateKind{model.StateFailed, model.StatePlayingArchive}, out.Path)
	assert.Equal(t, -40, effectsOf(out, FxPlayArchive)[0].Depth)
}

func TestArchiveFailure_OutsideWindowResumesLive(t *testing.T) {
	s := started(t)
	s, _ = apply(t, s, Event{Kind: EvConnectSucceeded, Device: testDevice})
	s, _ = apply(t, s, Event{Kind: EvArchiveControlLoaded, Archive: model.ArchiveControl{Start: t0.Add(-15 * time.Second), End: t0}})
	s, _ = apply(t, s, Event{Kind: EvPlayArchive, Depth: -10})

	s, out := apply(t, s, Event{Kind: EvArchivePlaybackFailed})
	assert.Equal(t, model.StateStreaming, model.KindOf(s.State))
	assert.Len(t, effectsOf(out, FxAdvise), 1)
	assert.Equal(t, model.SeverityWarning, effectsOf(out, FxAdvise)[0].Advisory.Severity)
}

func TestArchiveFailure_BudgetExhausted(t *testing.T) {
	s := archive(t, -100)
	s, _ = apply(t, s, Event{Kind: EvArchivePlaybackFailed})
	s, _ = apply(t, s, Event{Kind: EvArchivePlaybackFailed})
	require.Equal(t, model.StatePlayingArchive, model.KindOf(s.State))

	s, out := apply(t, s, Event{Kind: EvArchivePlaybackFailed})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EArchiveRetryExceeded, didFailKind(t, out))
}

func TestPauseResume_Live(t *testing.T) {
	s := streaming(t)
	s, _ = apply(t, s, Event{Kind: EvPlaybackFailed})
	require.Equal(t, 2, s.State.(model.Streaming).TriesLeft)

	s, out := apply(t, s, Event{Kind: EvPause})
	assert.Equal(t, model.Paused{StreamURL: testDevice.LiveURL, ViewModeInterval: time.Second}, s.State)
	assert.Len(t, effectsOf(out, FxPausePlayback), 1)
	assert.Equal(t, model.KeepAlivePaused, effectsOf(out, FxKeepAlive)[0].Entry.State)

	s, out = apply(t, s, Event{Kind: EvResume})
	assert.Equal(t, 3, s.State.(model.Streaming).TriesLeft, "resume restores the streaming budget")
	assert.Len(t, effectsOf(out, FxPlayLive), 1)
	assert.Empty(t, notesOf(out))
}

func TestPauseResume_Archive(t *testing.T) {
	s, _ := apply(t, archive(t, -50), Event{Kind: EvPause})
	p := s.State.(model.Paused)
	assert.Equal(t, -50, p.ArchiveDepth)

	s, out := apply(t, s, Event{Kind: EvResume})
	assert.Equal(t, -50, s.State.(model.PlayingArchive).DepthSeconds)
	assert.Equal(t, -50, effectsOf(out, FxPlayArchive)[0].Depth)
}

func TestViewMode_TogglesPolling(t *testing.T) {
	s, out := apply(t, streaming(t), Event{Kind: EvSetViewMode, ViewMode: true, Interval: 2 * time.Second})

	assert.Equal(t, []EffectKind{FxStopPlayback, FxStartViewMode}, mediaKinds(out))
	start := effectsOf(out, FxStartViewMode)[0]
	assert.Equal(t, 2*time.Second, start.Interval)
	assert.False(t, start.Archive)
	assert.Equal(t, model.ModeLiveSnapshot, effectsOf(out, FxKeepAlive)[0].Entry.Mode)

	_, out = apply(t, s, Event{Kind: EvSetViewMode, ViewMode: true, Interval: 2 * time.Second})
	assert.True(t, out.Dropped)

	_, out = apply(t, s, Event{Kind: EvSetViewMode, ViewMode: false})
	assert.Equal(t, []EffectKind{FxStopViewMode, FxPlayLive}, mediaKinds(out))
}

func TestViewMode_WhilePausedAppliesOnResume(t *testing.T) {
	s, _ := apply(t, streaming(t), Event{Kind: EvPause})
	s, out := apply(t, s, Event{Kind: EvSetViewMode, ViewMode: true})
	assert.Empty(t, out.Path)
	assert.True(t, s.State.(model.Paused).ViewMode)

	_, out = apply(t, s, Event{Kind: EvResume})
	assert.Equal(t, []EffectKind{FxStartViewMode}, mediaKinds(out))
}

func mediaKinds(out Outcome) []EffectKind {
	var res []EffectKind
	for _, fx := range out.Effects {
		switch fx.Kind {
		case FxPlayLive, FxPlayArchive, FxPausePlayback, FxStopPlayback, FxStartViewMode, FxStopViewMode:
			res = append(res, fx.Kind)
		}
	}
	return res
}

func TestBackground_ResumesWithinBudget(t *testing.T) {
	s, out := apply(t, streaming(t), Event{Kind: EvBackground, At: t0})
	require.Equal(t, model.StatePaused, model.KindOf(s.State))
	assert.True(t, s.PausedByBackground)
	assert.Len(t, effectsOf(out, FxPausePlayback), 1)

	s, _ = apply(t, s, Event{Kind: EvForeground, At: t0.Add(59 * time.Second)})
	assert.Equal(t, model.StateStreaming, model.KindOf(s.State))
	assert.False(t, s.PausedByBackground)
	assert.True(t, s.BackgroundedAt.IsZero())
}

func TestBackground_ConnectCompletingInBackgroundStaysPaused(t *testing.T) {
	s, _ := apply(t, started(t), Event{Kind: EvBackground, At: t0})
	require.Equal(t, model.StateConnecting, model.KindOf(s.State))

	s, out := apply(t, s, Event{Kind: EvConnectSucceeded, Device: testDevice, At: t0.Add(time.Second)})
	require.Equal(t, model.StatePaused, model.KindOf(s.State))
	assert.Equal(t, []model.StateKind{model.StateConnected, model.StateStreaming, model.StatePaused}, out.Path)
	assert.True(t, s.PausedByBackground)
	assert.Empty(t, effectsOf(out, FxPlayLive))
	assert.Empty(t, effectsOf(out, FxPausePlayback))
	intents := effectsOf(out, FxKeepAlive)
	require.NotEmpty(t, intents)
	assert.Equal(t, model.KeepAlivePaused, intents[len(intents)-1].Entry.State)

	s, out = apply(t, s, Event{Kind: EvForeground, At: t0.Add(5 * time.Second)})
	assert.Equal(t, model.StateStreaming, model.KindOf(s.State))
	play := effectsOf(out, FxPlayLive)
	require.Len(t, play, 1)
	assert.Equal(t, testDevice.LiveURL, play[0].URL)
}

func TestBackground_ArchiveRetryInBackgroundStaysPaused(t *testing.T) {
	s := archive(t, -30)
	s.BackgroundedAt = t0
	s, out := apply(t, s, Event{Kind: EvArchivePlaybackFailed})
	require.Equal(t, model.StatePaused, model.KindOf(s.State))
	assert.Empty(t, effectsOf(out, FxPlayArchive))
	assert.Equal(t, -40, s.State.(model.Paused).ArchiveDepth)
}

func TestBackground_StopsPastBudget(t *testing.T) {
	s, _ := apply(t, streaming(t), Event{Kind: EvBackground, At: t0})
	s, out := apply(t, s, Event{Kind: EvForeground, At: t0.Add(61 * time.Second)})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EBackgroundTimeout, didFailKind(t, out))
}

func TestBackground_UserPauseIsNotResumed(t *testing.T) {
	s, _ := apply(t, streaming(t), Event{Kind: EvPause})
	s, _ = apply(t, s, Event{Kind: EvBackground, At: t0})
	assert.False(t, s.PausedByBackground)
	s, out := apply(t, s, Event{Kind: EvForeground, At: t0.Add(time.Second)})
	assert.Equal(t, model.StatePaused, model.KindOf(s.State))
	assert.Empty(t, out.Path)
}

func TestForeground_WithoutBackgroundIsDropped(t *testing.T) {
	_, out := apply(t, streaming(t), Event{Kind: EvForeground, At: t0})
	assert.True(t, out.Dropped)
}

func TestStop_TwiceInvalidates(t *testing.T) {
	s, out := apply(t, streaming(t), Event{Kind: EvStop})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Len(t, effectsOf(out, FxCancelAll), 1)
	assert.Equal(t, model.KeepAliveSuspended, effectsOf(out, FxKeepAlive)[0].Entry.State)
	assert.Empty(t, effectsOf(out, FxShutdown))

	s, out = apply(t, s, Event{Kind: EvStop})
	assert.Equal(t, model.Invalidated{}, s.State)
	assert.Equal(t, []model.StateKind{model.StateStopped, model.StateInvalidated}, out.Path)
	assert.Len(t, effectsOf(out, FxShutdown), 1)
	assert.Contains(t, notesOf(out), NoteWillShutdown)

	for _, k := range []EventKind{EvStop, EvRefresh, EvResume, EvStart, EvConnectSucceeded} {
		_, out = apply(t, s, Event{Kind: k})
		assert.True(t, out.Dropped, "event %s after invalidation", k)
	}
}

func TestRefresh_FromStoppedResetsBudgets(t *testing.T) {
	s := streaming(t)
	s, _ = apply(t, s, Event{Kind: EvPlaybackFailed})
	s, _ = apply(t, s, Event{Kind: EvStop})

	s, out := apply(t, s, Event{Kind: EvRefresh})
	assert.Equal(t, model.Connecting{TriesLeft: 3}, s.State)
	assert.Equal(t, model.Budgets{Connection: 3, Streaming: 3, Archive: 3}, s.Budgets)
	assert.Len(t, effectsOf(out, FxRefreshed), 1)
	assert.Equal(t, 0, effectsOf(out, FxConnect)[0].Attempt)
}

func TestRefresh_WhileStreamingStopsPlayback(t *testing.T) {
	_, out := apply(t, streaming(t), Event{Kind: EvRefresh})
	assert.Equal(t, []EffectKind{FxStopPlayback}, mediaKinds(out))
	assert.Equal(t, []NoteKind{NoteFinishedLiveStreaming}, notesOf(out))
}

func TestKeepAliveStopped_StopsWithError(t *testing.T) {
	s, out := apply(t, archive(t, -10), Event{Kind: EvKeepAliveStopped})
	assert.Equal(t, model.Stopped{}, s.State)
	assert.Equal(t, model.EKeepAliveStopped, didFailKind(t, out))
	assert.Contains(t, notesOf(out), NoteFinishedPlayingArchive)
}

func TestEveryFailedEntryAdvisesOnce(t *testing.T) {
	cases := []struct {
		name string
		snap func(*testing.T) Snapshot
		ev   Event
	}{
		{"connect", started, Event{Kind: EvConnectFailed}},
		{"soft", streaming, Event{Kind: EvSideRequestFailed, ErrKind: model.EDescriptionFetchFailed}},
		{"playback", streaming, Event{Kind: EvPlaybackFailed}},
		{"keepalive", streaming, Event{Kind: EvKeepAliveStopped}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, out := apply(t, tc.snap(t), tc.ev)
			failed := 0
			for _, k := range out.Path {
				if k == model.StateFailed {
					failed++
				}
			}
			assert.Equal(t, failed, len(effectsOf(out, FxAdvise)))
		})
	}
}

func TestApply_IsPure(t *testing.T) {
	s := archive(t, -40)
	ev := Event{Kind: EvArchivePlaybackFailed, At: t0}
	a := Apply(s, ev, DefaultLimits())
	b := Apply(s, ev, DefaultLimits())
	if diff := cmp.Diff(a.Effects, b.Effects); diff != "" {
		t.Fatalf("non-deterministic effects:\n%s", diff)
	}
	assert.Equal(t, a.Next, b.Next)
	assert.Equal(t, -40, s.State.(model.PlayingArchive).DepthSeconds, "input snapshot untouched")
	assert.Equal(t, 3, s.Budgets.Archive)
}

func TestIntentFor(t *testing.T) {
	ac := &model.ArchiveControl{Start: t0.Add(-time.Hour), End: t0}
	cases := []struct {
		state model.State
		want  model.KeepAliveEntry
		ok    bool
	}{
		{model.Initial{}, model.KeepAliveEntry{}, false},
		{model.Connecting{TriesLeft: 1}, model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveLoading}, true},
		{model.Connected{}, model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveLoading}, true},
		{model.Streaming{ViewMode: true}, model.KeepAliveEntry{Mode: model.ModeLiveSnapshot, State: model.KeepAlivePlaying}, true},
		{model.Paused{}, model.KeepAliveEntry{Mode: model.ModeLiveVideo, State: model.KeepAlivePaused}, true},
		{model.Paused{ArchiveDepth: -5, ViewMode: true}, model.KeepAliveEntry{
			Mode: model.ModeArchiveSnapshot, State: model.KeepAlivePaused,
			Archive: &model.ArchivePosition{Position: t0.Add(-5 * time.Second), Scale: 1},
		}, true},
		{model.PlayingArchive{DepthSeconds: -60}, model.KeepAliveEntry{
			Mode: model.ModeArchiveVideo, State: model.KeepAlivePlaying,
			Archive: &model.ArchivePosition{Position: t0.Add(-time.Minute), Scale: 1},
		}, true},
		{model.Failed{}, model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveError}, true},
		{model.Stopped{}, model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveSuspended}, true},
		{model.Invalidated{}, model.KeepAliveEntry{}, false},
	}
	for _, tc := range cases {
		got, ok := IntentFor(tc.state, ac, t0.Add(time.Hour))
		assert.Equal(t, tc.ok, ok, "%T", tc.state)
		assert.Equal(t, tc.want, got, "%T", tc.state)
	}
}
