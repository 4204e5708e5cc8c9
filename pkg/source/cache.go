package source

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/topograph/pkg/cache"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
)

// CacheSource reads the node and edge documents written by the capture job.
// A missing document is an empty list. Concurrent loads share one round
// trip to the cache.
type CacheSource struct {
	name    string
	cache   cache.Cache
	keys    cache.Keys
	backoff cache.Backoff
	group   singleflight.Group
}

// CacheOption configures a CacheSource.
type CacheOption func(*CacheSource)

// WithBackoff overrides the retry policy for transient cache errors.
func WithBackoff(b cache.Backoff) CacheOption {
	return func(s *CacheSource) { s.backoff = b }
}

// WithName overrides the name used in logs.
func WithName(name string) CacheOption {
	return func(s *CacheSource) { s.name = name }
}

// NewCacheSource returns a source reading keys from c.
func NewCacheSource(c cache.Cache, keys cache.Keys, opts ...CacheOption) *CacheSource {
	s := &CacheSource{
		name:    "cache",
		cache:   c,
		keys:    keys,
		backoff: cache.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *CacheSource) Name() string { return s.name }

// loadTimeout bounds a shared load, which outlives the caller that started it.
const loadTimeout = 30 * time.Second

// Load fetches and decodes both documents. A caller whose ctx ends returns
// early with ctx.Err(); the shared load keeps running for the others.
func (s *CacheSource) Load(ctx context.Context) (topology.Snapshot, error) {
	ch := s.group.DoChan("load", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(lctx)
	})
	select {
	case <-ctx.Done():
		return topology.Snapshot{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return topology.Snapshot{}, r.Err
		}
		// Callers sharing a flight must not share slices.
		return r.Val.(topology.Snapshot).Clone(), nil
	}
}

func (s *CacheSource) load(ctx context.Context) (topology.Snapshot, error) {
	nodesRaw, err := s.get(ctx, s.keys.Nodes())
	if err != nil {
		return topology.Snapshot{}, err
	}
	edgesRaw, err := s.get(ctx, s.keys.Edges())
	if err != nil {
		return topology.Snapshot{}, err
	}

	var snap topology.Snapshot
	if nodesRaw != nil {
		if snap.Nodes, err = topology.UnmarshalNodes(nodesRaw); err != nil {
			return topology.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode %s", s.keys.Nodes())
		}
	}
	if edgesRaw != nil {
		if snap.Edges, err = topology.UnmarshalEdges(edgesRaw); err != nil {
			return topology.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode %s", s.keys.Edges())
		}
	}
	return snap, nil
}

func (s *CacheSource) get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.backoff.Retry(ctx, func() error {
		d, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			data = d
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "read %s", key)
	}
	return data, nil
}

// Store writes a snapshot under the source's keys in the capture job's
// format. A ttl of zero keeps the documents until they are replaced.
func (s *CacheSource) Store(ctx context.Context, snap topology.Snapshot, ttl time.Duration) error {
	nodes, err := topology.MarshalNodes(snap.Nodes)
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	edges, err := topology.MarshalEdges(snap.Edges)
	if err != nil {
		return fmt.Errorf("encode edges: %w", err)
	}
	for _, kv := range []struct {
		key  string
		data []byte
	}{
		{s.keys.Nodes(), nodes},
		{s.keys.Edges(), edges},
	} {
		err := s.backoff.Retry(ctx, func() error {
			return s.cache.Set(ctx, kv.key, kv.data, ttl)
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeSource, err, "write %s", kv.key)
		}
	}
	return nil
}

var _ Source = (*CacheSource)(nil)
