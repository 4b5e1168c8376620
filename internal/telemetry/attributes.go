// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	CameraIDKey  = "vss.camera_id"
	DeviceIDKey  = "vss.device_id"
	OperationKey = "vss.operation"
	DepthKey     = "vss.archive_depth_s"
	StatusKey    = "http.status_code"
	ErrorKindKey = "error.type"
)

// GatewayAttributes describes one gateway call.
func GatewayAttributes(op, camera, device string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(OperationKey, op)}
	if camera != "" {
		attrs = append(attrs, attribute.String(CameraIDKey, camera))
	}
	if device != "" {
		attrs = append(attrs, attribute.String(DeviceIDKey, device))
	}
	return attrs
}
