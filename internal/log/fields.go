// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldDeviceID  = "device_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "op"

	// State fields
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldErrorKind = "error_kind"
	FieldTriesLeft = "tries_left"
	FieldDepth     = "depth_s"

	// Keep-alive fields
	FieldKeepAliveStatus = "keepalive_status"
	FieldDevices         = "devices"

	// URL fields
	FieldURL     = "url"
	FieldBaseURL = "base_url"
)
