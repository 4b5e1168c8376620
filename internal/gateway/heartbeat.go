// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"net/http"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"go.opentelemetry.io/otel/attribute"
)

type heartbeatRequest struct {
	Devices model.KeepAlivePayload `json:"devices"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// SendHeartbeat posts the intent map. An unknown status is treated as running.
func (c *Client) SendHeartbeat(ctx context.Context, payload model.KeepAlivePayload) (model.HeartbeatResult, error) {
	var res model.HeartbeatResult
	err := c.getJSON(ctx, call{
		op:     "heartbeat",
		method: http.MethodPost,
		path:   "/api/v1/keepalive",
		body:   heartbeatRequest{Devices: payload},
		attrs:  []attribute.KeyValue{attribute.Int("vss.devices", len(payload))},
	}, &res)
	if err != nil {
		return model.HeartbeatResult{}, err
	}
	switch res.Status {
	case model.HeartbeatInterrupted, model.HeartbeatStopped:
	default:
		res.Status = model.HeartbeatRunning
	}
	return res, nil
}

// RefreshToken exchanges the current token for a new one.
func (c *Client) RefreshToken(ctx context.Context) error {
	var res refreshResponse
	if err := c.getJSON(ctx, call{op: "refresh_token", method: http.MethodPost, path: "/api/v1/auth/refresh"}, &res); err != nil {
		return err
	}
	if res.Token == "" {
		return &Error{Sentinel: ports.ErrUnauthorized, Operation: "refresh_token", Body: "empty token"}
	}
	c.setToken(res.Token)
	c.logger.Info().Msg("gateway token refreshed")
	return nil
}

var (
	_ ports.HeartbeatSender = (*Client)(nil)
	_ ports.TokenRefresher  = (*Client)(nil)
)
