// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package framecache keeps recently fetched archive stills so repeated
// seeks and view-mode polling over the same instant do not hit the gateway.
package framecache

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the frame recorded at ts (unix seconds) for device.
type Fetcher func(ctx context.Context, device model.Device, ts int64) ([]byte, error)

type key struct {
	device model.DeviceID
	ts     int64
}

// Cache is an LRU of archive frames with concurrent loads for the same key
// collapsed into one fetch.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache
	byDevice map[model.DeviceID]map[int64]struct{}
	group    singleflight.Group
	fetch    Fetcher
}

func New(maxEntries int, fetch Fetcher) *Cache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	c := &Cache{lru: lru.New(maxEntries), byDevice: map[model.DeviceID]map[int64]struct{}{}, fetch: fetch}
	c.lru.OnEvicted = func(k lru.Key, _ interface{}) {
		fk := k.(key)
		if set := c.byDevice[fk.device]; set != nil {
			delete(set, fk.ts)
			if len(set) == 0 {
				delete(c.byDevice, fk.device)
			}
		}
	}
	return c
}

// Get returns the cached frame or fetches it.
func (c *Cache) Get(ctx context.Context, device model.Device, ts int64) ([]byte, error) {
	k := key{device: device.ID, ts: ts}
	if frame, ok := c.lookup(k); ok {
		metrics.FrameCacheLookupsTotal.WithLabelValues("hit").Inc()
		return frame, nil
	}
	metrics.FrameCacheLookupsTotal.WithLabelValues("miss").Inc()

	v, err, shared := c.group.Do(fmt.Sprintf("%s@%d", k.device, k.ts), func() (interface{}, error) {
		frame, err := c.fetch(ctx, device, ts)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.lru.Add(k, frame)
		if c.byDevice[k.device] == nil {
			c.byDevice[k.device] = map[int64]struct{}{}
		}
		c.byDevice[k.device][k.ts] = struct{}{}
		c.mu.Unlock()
		return frame, nil
	})
	if shared {
		metrics.FrameCacheLookupsTotal.WithLabelValues("shared").Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) lookup(k key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Forget drops all frames of device, typically after it reconnects with a
// new archive window.
func (c *Cache) Forget(device model.DeviceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ts := range c.byDevice[device] {
		c.lru.Remove(key{device: device, ts: ts})
	}
	delete(c.byDevice, device)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
