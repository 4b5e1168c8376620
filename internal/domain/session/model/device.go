// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "time"

// DeviceID identifies a camera on the remote service.
type DeviceID string

// SearchResult is what the host hands in to open a session for a camera.
type SearchResult struct {
	CameraID string `json:"cameraId"`
	Name     string `json:"name,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Device is the handle returned by a successful connect.
type Device struct {
	ID      DeviceID `json:"id"`
	Name    string   `json:"name,omitempty"`
	LiveURL string   `json:"liveUrl"`
}

// Description is the optional short text shown next to a camera.
type Description struct {
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
}

// ArchiveControl bounds the recorded window of a device.
type ArchiveControl struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DepthSeconds is the length of the archive window in seconds.
func (a ArchiveControl) DepthSeconds() int {
	if a.End.Before(a.Start) {
		return 0
	}
	return int(a.End.Sub(a.Start) / time.Second)
}

// Contains reports whether a negative depth lies inside the recorded window.
func (a ArchiveControl) Contains(depth int) bool {
	return depth < 0 && depth >= -a.DepthSeconds()
}

// Timestamp converts a depth to the wall-clock instant it addresses.
func (a ArchiveControl) Timestamp(depth int) time.Time {
	return a.End.Add(time.Duration(depth) * time.Second)
}
