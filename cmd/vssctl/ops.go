// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/manager"
	"github.com/ManuGH/vssplay/internal/keepalive"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/resilience"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	errUnknownSession = errors.New("unknown session")
	errUnknownAction  = errors.New("unknown action")
)

type healthReport struct {
	Status    string `json:"status"`
	KeepAlive string `json:"keepalive"`
	Breaker   string `json:"gatewayBreaker"`
	Error     string `json:"error,omitempty"`
}

// opsBackend is what the ops server reads and controls.
type opsBackend interface {
	Sessions() []manager.View
	Control(id, action string) error
	Health() healthReport
}

type hubBackend struct {
	hub     *manager.Hub
	breaker func() resilience.State
}

func (b hubBackend) Sessions() []manager.View { return b.hub.Sessions() }

func (b hubBackend) Control(id, action string) error {
	s, ok := b.hub.Get(id)
	if !ok {
		return errUnknownSession
	}
	switch action {
	case "stop":
		s.Stop()
	case "refresh":
		s.Refresh()
	case "pause":
		s.Pause()
	case "resume":
		s.Resume()
	case "live":
		s.ResumeLive()
	case "back":
		s.StepArchive(manager.StepBack)
	case "forward":
		s.StepArchive(manager.StepForward)
	default:
		return errUnknownAction
	}
	return nil
}

func (b hubBackend) Health() healthReport {
	st, err := b.hub.KeepAlive().Status()
	r := healthReport{Status: "ok", KeepAlive: st.String()}
	if b.breaker != nil {
		r.Breaker = string(b.breaker())
	}
	if st == keepalive.StatusStopped {
		r.Status = "degraded"
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func newOpsRouter(backend opsBackend) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		rep := backend.Health()
		code := http.StatusOK
		if rep.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, rep)
	})
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, backend.Sessions())
	})
	r.Post("/sessions/{id}/{action}", func(w http.ResponseWriter, req *http.Request) {
		err := backend.Control(chi.URLParam(req, "id"), chi.URLParam(req, "action"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusAccepted)
		case errors.Is(err, errUnknownSession):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, errUnknownAction):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// serveOps runs the ops server until ctx ends.
func serveOps(ctx context.Context, addr string, h http.Handler) error {
	logger := log.WithComponent("ops")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info().Str("event", "ops.listening").Str("addr", ln.Addr().String()).Msg("ops server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
