// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/resilience"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var device = model.Device{ID: "dev-1", Name: "Gate", LiveURL: "rtsp://cam/live"}

func newTestClient(t *testing.T, h http.Handler, mutate ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts := Options{BaseURL: srv.URL, Token: "tok-1", Timeout: 2 * time.Second}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestConnect(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/cameras/connect", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
		var body connectRequest
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "cam-1", body.CameraID)
		writeJSON(w, deviceResponse{DeviceID: "dev-1", LiveURL: "rtsp://cam/live"})
	})
	c := newTestClient(t, r)

	dev, err := c.Connect(context.Background(), model.SearchResult{CameraID: "cam-1", Name: "Gate"})
	require.NoError(t, err)
	assert.Equal(t, device, dev)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ports.ErrUnauthorized},
		{http.StatusForbidden, ports.ErrUnauthorized},
		{http.StatusNotFound, ports.ErrNotFound},
		{http.StatusGatewayTimeout, ports.ErrTimeout},
		{http.StatusServiceUnavailable, ports.ErrUpstream},
		{http.StatusBadRequest, ports.ErrBadResponse},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			_, err := c.Connect(context.Background(), model.SearchResult{CameraID: "cam-1"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.status, gerr.Status)
			assert.Equal(t, "nope", gerr.Body)
		})
	}
}

func TestDecodeFailureIsBadResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	_, err := c.FetchSecurityMarker(context.Background(), device)
	assert.ErrorIs(t, err, ports.ErrBadResponse)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Connect(context.Background(), model.SearchResult{CameraID: "cam-1"})
	assert.ErrorIs(t, err, ports.ErrNotReachable)
	assert.True(t, ports.IsConnectivity(err))
}

func TestTimeoutAndCancel(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), func(o *Options) { o.Timeout = 50 * time.Millisecond })
	defer close(release)

	_, err := c.FetchLiveSnapshot(context.Background(), device)
	assert.ErrorIs(t, err, ports.ErrTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FetchLiveSnapshot(ctx, device)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreakerGuardsSideRequestsOnly(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/v1/devices/{id}/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	})
	r.Post("/api/v1/cameras/connect", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, deviceResponse{DeviceID: "dev-1", LiveURL: "rtsp://cam/live"})
	})
	c := newTestClient(t, r, func(o *Options) { o.BreakerThreshold = 2; o.BreakerReset = time.Hour })

	for i := 0; i < 2; i++ {
		_, err := c.FetchLiveSnapshot(context.Background(), device)
		assert.ErrorIs(t, err, ports.ErrUpstream)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.FetchArchiveSnapshot(context.Background(), device, 1700000000)
	assert.ErrorIs(t, err, ports.ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())

	_, err = c.Connect(context.Background(), model.SearchResult{CameraID: "cam-1"})
	assert.NoError(t, err)
}

func TestArchiveSnapshotQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/devices/{id}/snapshot", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "dev-1", chi.URLParam(req, "id"))
		assert.Equal(t, "1700000000", req.URL.Query().Get("ts"))
		_, _ = w.Write([]byte("frame"))
	})
	c := newTestClient(t, r)

	frame, err := c.FetchArchiveSnapshot(context.Background(), device, 1700000000)
	require.NoError(t, err)
	assert.Equal(t, []byte("frame"), frame)
}

func TestOversizedBodyIsBadResponse(t *testing.T) {
	frame := bytes.Repeat([]byte{0xff}, maxFrameBytes)
	r := chi.NewRouter()
	r.Get("/api/v1/devices/{id}/snapshot", func(w http.ResponseWriter, req *http.Request) {
		body := frame
		if req.URL.Query().Get("ts") == "2" {
			body = append(body, 0xd9)
		}
		_, _ = w.Write(body)
	})
	c := newTestClient(t, r)

	got, err := c.FetchArchiveSnapshot(context.Background(), device, 1)
	require.NoError(t, err)
	assert.Len(t, got, maxFrameBytes)

	_, err = c.FetchArchiveSnapshot(context.Background(), device, 2)
	require.ErrorIs(t, err, ports.ErrBadResponse)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Error(), "exceeds")
}

func TestArchiveControlRejectsInvertedWindow(t *testing.T) {
	end := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, archiveResponse{Start: end, End: end.Add(-time.Hour)})
	}))
	_, err := c.FetchArchiveControl(context.Background(), device)
	assert.ErrorIs(t, err, ports.ErrBadResponse)
}

func TestHeartbeatAndRefresh(t *testing.T) {
	var auth atomic.Value
	r := chi.NewRouter()
	r.Post("/api/v1/keepalive", func(w http.ResponseWriter, req *http.Request) {
		auth.Store(req.Header.Get("Authorization"))
		var body heartbeatRequest
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, model.KeepAlivePlaying, body.Devices["dev-1"].State)
		writeJSON(w, model.HeartbeatResult{Status: "weird"})
	})
	r.Post("/api/v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, refreshResponse{Token: "tok-2"})
	})
	c := newTestClient(t, r)

	payload := model.KeepAlivePayload{"dev-1": {Mode: model.ModeLiveVideo, State: model.KeepAlivePlaying}}
	res, err := c.SendHeartbeat(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, model.HeartbeatRunning, res.Status)
	assert.Equal(t, "Bearer tok-1", auth.Load())

	require.NoError(t, c.RefreshToken(context.Background()))
	_, err = c.SendHeartbeat(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-2", auth.Load())
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "ftp://example"})
	assert.Error(t, err)
}
