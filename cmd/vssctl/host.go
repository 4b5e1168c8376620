// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/rs/zerolog"
)

// logPlayer stands in for a media player and logs every command it gets.
type logPlayer struct {
	logger zerolog.Logger
}

func newLogPlayer() *logPlayer {
	return &logPlayer{logger: log.WithComponent("player")}
}

func (p *logPlayer) SetControlsEnabled(enabled bool) {
	p.logger.Debug().Bool("enabled", enabled).Msg("controls")
}

func (p *logPlayer) Refreshed() { p.logger.Info().Msg("refreshed") }

func (p *logPlayer) PlayLive(url string) {
	p.logger.Info().Str(log.FieldURL, url).Msg("play live")
}

func (p *logPlayer) PlayArchive(depth int) {
	p.logger.Info().Int(log.FieldDepth, depth).Msg("play archive")
}

func (p *logPlayer) Pause() { p.logger.Info().Msg("pause") }
func (p *logPlayer) Stop()  { p.logger.Info().Msg("stop") }

func (p *logPlayer) ShowFrame(frame []byte) {
	p.logger.Debug().Int("bytes", len(frame)).Msg("frame")
}

func (p *logPlayer) ShowSecurityMarker(marker string) {
	p.logger.Info().Str("marker", marker).Msg("security marker")
}

func (p *logPlayer) ShowDescription(desc model.Description) {
	p.logger.Info().Str("title", desc.Title).Str("details", desc.Details).Msg("description")
}
