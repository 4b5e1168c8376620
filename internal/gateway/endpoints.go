// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/telemetry"
)

type connectRequest struct {
	CameraID string `json:"cameraId"`
	Address  string `json:"address,omitempty"`
}

type deviceResponse struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	LiveURL  string `json:"liveUrl"`
}

type archiveResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type markerResponse struct {
	Marker string `json:"marker"`
}

func devicePath(id model.DeviceID, suffix string) string {
	return "/api/v1/devices/" + url.PathEscape(string(id)) + suffix
}

// Connect opens a device for target. An empty live URL is passed through;
// the session decides what that means.
func (c *Client) Connect(ctx context.Context, target model.SearchResult) (model.Device, error) {
	var res deviceResponse
	err := c.getJSON(ctx, call{
		op:     "connect",
		method: http.MethodPost,
		path:   "/api/v1/cameras/connect",
		body:   connectRequest{CameraID: target.CameraID, Address: target.Address},
		attrs:  telemetry.GatewayAttributes("connect", target.CameraID, ""),
	}, &res)
	if err != nil {
		return model.Device{}, err
	}
	if res.DeviceID == "" {
		return model.Device{}, &Error{Sentinel: ports.ErrBadResponse, Operation: "connect", Body: "missing deviceId"}
	}
	name := res.Name
	if name == "" {
		name = target.Name
	}
	return model.Device{ID: model.DeviceID(res.DeviceID), Name: name, LiveURL: res.LiveURL}, nil
}

func (c *Client) FetchArchiveControl(ctx context.Context, device model.Device) (model.ArchiveControl, error) {
	var res archiveResponse
	err := c.getJSON(ctx, call{
		op:     "fetch_archive_control",
		method: http.MethodGet,
		path:   devicePath(device.ID, "/archive"),
		side:   true,
		attrs:  telemetry.GatewayAttributes("fetch_archive_control", "", string(device.ID)),
	}, &res)
	if err != nil {
		return model.ArchiveControl{}, err
	}
	if res.End.Before(res.Start) {
		return model.ArchiveControl{}, &Error{Sentinel: ports.ErrBadResponse, Operation: "fetch_archive_control", Body: "end before start"}
	}
	return model.ArchiveControl{Start: res.Start, End: res.End}, nil
}

func (c *Client) FetchLiveSnapshot(ctx context.Context, device model.Device) ([]byte, error) {
	return c.do(ctx, call{
		op:     "fetch_live_snapshot",
		method: http.MethodGet,
		path:   devicePath(device.ID, "/snapshot"),
		side:   true,
		attrs:  telemetry.GatewayAttributes("fetch_live_snapshot", "", string(device.ID)),
	})
}

// FetchArchiveSnapshot returns the recorded frame at ts, in Unix seconds.
func (c *Client) FetchArchiveSnapshot(ctx context.Context, device model.Device, ts int64) ([]byte, error) {
	return c.do(ctx, call{
		op:     "fetch_archive_snapshot",
		method: http.MethodGet,
		path:   devicePath(device.ID, "/snapshot"),
		query:  url.Values{"ts": []string{strconv.FormatInt(ts, 10)}},
		side:   true,
		attrs:  telemetry.GatewayAttributes("fetch_archive_snapshot", "", string(device.ID)),
	})
}

func (c *Client) FetchSecurityMarker(ctx context.Context, device model.Device) (string, error) {
	var res markerResponse
	err := c.getJSON(ctx, call{
		op:     "fetch_security_marker",
		method: http.MethodGet,
		path:   devicePath(device.ID, "/marker"),
		side:   true,
		attrs:  telemetry.GatewayAttributes("fetch_security_marker", "", string(device.ID)),
	}, &res)
	return res.Marker, err
}

func (c *Client) FetchShortDescription(ctx context.Context, target model.SearchResult) (model.Description, error) {
	var res model.Description
	err := c.getJSON(ctx, call{
		op:     "fetch_description",
		method: http.MethodGet,
		path:   "/api/v1/cameras/" + url.PathEscape(target.CameraID) + "/description",
		side:   true,
		attrs:  telemetry.GatewayAttributes("fetch_description", target.CameraID, ""),
	}, &res)
	return res, err
}

var _ ports.Gateway = (*Client)(nil)
