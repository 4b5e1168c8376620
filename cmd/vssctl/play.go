// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/vssplay/internal/config"
	"github.com/ManuGH/vssplay/internal/domain/session/manager"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/gateway"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/telemetry"
	"github.com/ManuGH/vssplay/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type playOptions struct {
	camera   string
	name     string
	address  string
	viewMode bool
	interval time.Duration
	archive  int
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Stream one camera until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.camera, "camera", "", "camera id to connect to")
	f.StringVar(&opts.name, "name", "", "camera display name")
	f.StringVar(&opts.address, "address", "", "camera address hint")
	f.BoolVar(&opts.viewMode, "view-mode", false, "poll still frames instead of streaming")
	f.DurationVar(&opts.interval, "view-interval", 0, "view-mode poll interval (0 uses config)")
	f.IntVar(&opts.archive, "archive", 0, "start archive playback this many seconds behind live")
	_ = cmd.MarkFlagRequired("camera")
	return cmd
}

func runPlay(parent context.Context, root *rootOptions, opts *playOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(root.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if cfg.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.baseURL is required (set %s)", config.EnvGatewayURL)
	}
	configureLogging(cfg)
	logger := log.WithComponent("cli")

	tp, err := telemetry.NewProvider(ctx, telemetryConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	gw, err := gateway.New(gatewayOptions(cfg))
	if err != nil {
		return err
	}
	hub := manager.NewHub(hubConfig(cfg), manager.HubDeps{Gateway: gw, Heartbeat: gw, Refresher: gw})

	// Subscribe before any session exists so no event is missed.
	events, err := hub.Bus().Subscribe(ctx, ports.TopicSessionEvents)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return logSessionEvents(gctx, events, logger) })

	if cfg.Metrics.Listen != "" {
		router := newOpsRouter(hubBackend{hub: hub, breaker: gw.BreakerState})
		g.Go(func() error { return serveOps(gctx, cfg.Metrics.Listen, router) })
	}
	if loader.Path() != "" {
		holder := config.NewConfigHolder(cfg, loader)
		reloads := make(chan config.AppConfig, 1)
		holder.Subscribe(reloads)
		g.Go(func() error { return holder.Watch(gctx) })
		g.Go(func() error { return applyReloads(gctx, reloads, logger) })
	}

	target := model.SearchResult{CameraID: opts.camera, Name: opts.name, Address: opts.address}
	sess, openErr := hub.Open(gctx, target, newLogPlayer(), nil, opts.openOptions()...)
	if openErr == nil {
		logger.Info().Str(log.FieldSessionID, sess.ID()).Str("camera", opts.camera).Msg("session opened")
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-sess.Done():
				logger.Info().Str(log.FieldSessionID, sess.ID()).Msg("session ended")
			}
			stop()
			return nil
		})
	} else {
		stop()
	}

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hub.Close(closeCtx); err != nil {
		logger.Warn().Err(err).Msg("hub close timed out")
	}

	if openErr != nil {
		return fmt.Errorf("open session: %w", openErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logSessionEvents(ctx context.Context, sub ports.Subscription, logger zerolog.Logger) error {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			ev, ok := msg.(manager.SessionEvent)
			if !ok {
				continue
			}
			e := logger.Info().
				Str("event", "session."+ev.Kind).
				Str(log.FieldSessionID, ev.Session)
			if ev.State != model.StateNone {
				e = e.Str(log.FieldNewState, ev.State.String())
			}
			if ev.Error != "" {
				e = e.Str("error", ev.Error)
			}
			e.Msg("session event")
		}
	}
}

func applyReloads(ctx context.Context, reloads <-chan config.AppConfig, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-reloads:
			if err := log.SetLevel(cfg.Log.Level); err != nil {
				logger.Warn().Err(err).Str("level", cfg.Log.Level).Msg("ignoring reloaded log level")
				continue
			}
			logger.Info().Str("level", cfg.Log.Level).Msg("log level applied")
		}
	}
}

// openOptions turns the playback flags into requests the session applies
// once it is streaming.
func (o playOptions) openOptions() []manager.OpenOption {
	var out []manager.OpenOption
	if o.viewMode {
		out = append(out, manager.WithViewMode(o.interval))
	}
	if o.archive > 0 {
		out = append(out, manager.WithArchiveDepth(-o.archive))
	}
	return out
}
