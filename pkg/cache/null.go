package cache

import (
	"context"
	"time"
)

// NullCache stands in for a real cache when caching is switched off, as with
// "render --no-cache". Reads always miss and writes are dropped, so a
// snapshot source backed by it sees an empty topology.
type NullCache struct{}

var _ Cache = NullCache{}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
