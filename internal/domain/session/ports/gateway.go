// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import (
	"context"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// Gateway is the remote VSS service as seen by one session. Every call blocks
// until done or ctx is canceled; cancellation is how a session abandons a
// pending request.
type Gateway interface {
	Connect(ctx context.Context, target model.SearchResult) (model.Device, error)
	FetchArchiveControl(ctx context.Context, device model.Device) (model.ArchiveControl, error)
	FetchLiveSnapshot(ctx context.Context, device model.Device) ([]byte, error)
	// FetchArchiveSnapshot returns the still frame recorded at ts.
	FetchArchiveSnapshot(ctx context.Context, device model.Device, ts int64) ([]byte, error)
	FetchSecurityMarker(ctx context.Context, device model.Device) (string, error)
	FetchShortDescription(ctx context.Context, target model.SearchResult) (model.Description, error)
}

// HeartbeatSender delivers the aggregated keep-alive payload.
type HeartbeatSender interface {
	SendHeartbeat(ctx context.Context, payload model.KeepAlivePayload) (model.HeartbeatResult, error)
}

// TokenRefresher renews the credentials used by the gateway.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) error
}
