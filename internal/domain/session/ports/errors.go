// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "errors"

// Gateway errors. Adapters wrap transport failures with one of these so the
// session can classify them without knowing the transport.
var (
	ErrUnauthorized = errors.New("gateway: unauthorized")
	ErrNotReachable = errors.New("gateway: not reachable")
	ErrTimeout      = errors.New("gateway: timeout")
	ErrNotFound     = errors.New("gateway: not found")
	ErrUpstream     = errors.New("gateway: upstream error")
	ErrBadResponse  = errors.New("gateway: bad response")
	ErrCircuitOpen  = errors.New("gateway: circuit open")

	// ErrNoLiveURL means the device exists but offers no live stream.
	ErrNoLiveURL = errors.New("gateway: no live stream url")
)

// IsConnectivity reports whether err means the service could not be reached,
// as opposed to being reached and refusing.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrNotReachable) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrCircuitOpen)
}
