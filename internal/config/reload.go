// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/timer"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// ErrNoConfigFile is returned by StartWatcher when running from ENV only.
var ErrNoConfigFile = errors.New("no config file to watch")

// ConfigHolder provides thread-safe access to the current configuration and
// swaps it on reload.
type ConfigHolder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	logger  zerolog.Logger

	debounce *timer.Debouncer

	listenersMu sync.Mutex
	listeners   []chan<- AppConfig
}

// HolderOption customizes a ConfigHolder.
type HolderOption func(*ConfigHolder)

// WithReloadClock replaces the clock and delay used to coalesce file events.
func WithReloadClock(clock timer.Clock, delay time.Duration) HolderOption {
	return func(h *ConfigHolder) { h.debounce = timer.NewDebouncer(clock, delay) }
}

func NewConfigHolder(initial AppConfig, loader *Loader, opts ...HolderOption) *ConfigHolder {
	h := &ConfigHolder{
		current:  initial,
		loader:   loader,
		logger:   log.WithComponent("config"),
		debounce: timer.NewDebouncer(nil, reloadDebounce),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get returns a copy of the current configuration.
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads and validates a fresh configuration. The current one is kept
// when loading fails.
func (h *ConfigHolder) Reload() error {
	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("configuration reload failed, keeping current config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.logger.Info().
		Str("event", "config.reloaded").
		Str("log_level", next.Log.Level).
		Bool("level_changed", prev.Log.Level != next.Log.Level).
		Msg("configuration reloaded")

	h.notify(next)
	return nil
}

// Subscribe registers ch for reloads. Sends never block; a listener that is
// not ready misses that reload.
func (h *ConfigHolder) Subscribe(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *ConfigHolder) notify(cfg AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str("event", "config.listener_slow").Msg("config listener not ready, skipping")
		}
	}
}

// Watch reloads on every change of the config file until ctx ends. The
// directory is watched so editors that replace the file are seen.
func (h *ConfigHolder) Watch(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		return ErrNoConfigFile
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	h.logger.Info().Str("event", "config.watch_started").Str("path", path).Msg("watching config file")
	defer h.debounce.CancelAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			h.debounce.Trigger("reload", func() { _ = h.Reload() })
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn().Err(werr).Str("event", "config.watch_error").Msg("config watcher error")
		}
	}
}
