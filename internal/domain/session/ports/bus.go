// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "context"

// Topics published on the bus.
const (
	TopicKeepAliveStatus = "keepalive.status"
	TopicSessionEvents   = "session.events"
)

// Bus is a topic based fan-out of in-process events.
type Bus interface {
	Publish(ctx context.Context, topic string, event interface{}) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Subscription interface {
	C() <-chan interface{}
	Close() error
}
