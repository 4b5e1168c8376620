// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ManuGH/vssplay/internal/domain/session/ports"
)

// Error wraps a ports sentinel with the context of the failed call.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gateway: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the transport cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ports.ErrUnauthorized
	case status == http.StatusNotFound:
		return ports.ErrNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ports.ErrTimeout
	case status >= 500:
		return ports.ErrUpstream
	default:
		return ports.ErrBadResponse
	}
}

// transportError classifies a failure of http.Client.Do.
func transportError(ctx context.Context, op string, err error) error {
	if cerr := ctx.Err(); cerr != nil && !errors.Is(cerr, context.DeadlineExceeded) {
		return cerr
	}
	var nerr net.Error
	sentinel := ports.ErrNotReachable
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		sentinel = ports.ErrTimeout
	}
	return &Error{Sentinel: sentinel, Operation: op, Err: err}
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ports.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, ports.ErrTimeout):
		return "timeout"
	case errors.Is(err, ports.ErrNotReachable):
		return "unreachable"
	case errors.Is(err, ports.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ports.ErrUpstream):
		return "upstream"
	default:
		return "bad_response"
	}
}
