// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
)

// Operation names used in events and errors.
const (
	OpConnect             = "connect"
	OpPlayLive            = "play_live"
	OpPlayArchive         = "play_archive"
	OpFetchArchiveControl = "fetch_archive_control"
	OpFetchLiveSnapshot   = "fetch_live_snapshot"
	OpFetchSecurityMarker = "fetch_security_marker"
	OpFetchDescription    = "fetch_description"
	OpViewMode            = "view_mode"
	OpArchiveViewMode     = "archive_view_mode"
	OpKeepAlive           = "keepalive"
)

var opKinds = map[string]model.ErrorKind{
	OpConnect:             model.EConnectionFailed,
	OpPlayLive:            model.EStreamingFailed,
	OpPlayArchive:         model.EArchivePlaybackFailed,
	OpFetchArchiveControl: model.EArchiveBoundsFailed,
	OpFetchLiveSnapshot:   model.ESnapshotPreloadFailed,
	OpFetchSecurityMarker: model.ESecurityMarkerFailed,
	OpFetchDescription:    model.EDescriptionFetchFailed,
	OpViewMode:            model.EViewModeSnapshotFailed,
	OpArchiveViewMode:     model.EArchiveSnapshotFailed,
	OpKeepAlive:           model.EKeepAliveStopped,
}

// Classify maps a raw gateway error from op to the kind the machine acts on.
// Unauthorized wins over the operation's own kind.
func Classify(op string, err error) model.ErrorKind {
	var se *model.SessionError
	switch {
	case err == nil:
		return model.ENone
	case errors.Is(err, ports.ErrUnauthorized):
		return model.EUnauthorized
	case errors.Is(err, ports.ErrNoLiveURL):
		return model.ENoStreamingURL
	case errors.As(err, &se):
		return se.Kind
	}
	if k, ok := opKinds[op]; ok {
		return k
	}
	return model.ENone
}
