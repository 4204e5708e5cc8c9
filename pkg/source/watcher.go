package source

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topograph/pkg/cache"
	"github.com/matzehuels/topograph/pkg/observability"
	"github.com/matzehuels/topograph/pkg/topology"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 30 * time.Second

// UpdateFunc receives every changed snapshot together with its content hash.
type UpdateFunc func(ctx context.Context, snap topology.Snapshot, hash string)

// Watcher polls a Source and reports snapshots that differ from the last
// one delivered.
type Watcher struct {
	src      Source
	interval time.Duration
	onUpdate UpdateFunc
	logger   *log.Logger

	mu       sync.Mutex
	lastHash string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher returns a watcher that calls onUpdate for each new snapshot.
func NewWatcher(src Source, onUpdate UpdateFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		src:      src,
		interval: DefaultInterval,
		onUpdate: onUpdate,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run loads immediately and then on every tick until ctx is done. Load
// errors are logged and the previous snapshot stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching topology", "source", w.src.Name(), "interval", w.interval)
	if _, err := w.Refresh(ctx); err != nil {
		w.logger.Error("load snapshot", "source", w.src.Name(), "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("load snapshot", "source", w.src.Name(), "err", err)
			}
		}
	}
}

// Refresh loads once and delivers the snapshot if it changed.
func (w *Watcher) Refresh(ctx context.Context) (bool, error) {
	start := time.Now()
	snap, err := w.src.Load(ctx)
	if err != nil {
		observability.Source().OnSnapshotLoaded(ctx, w.src.Name(), 0, 0, false, time.Since(start), err)
		return false, err
	}
	hash, err := snapshotHash(snap)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	changed := hash != w.lastHash
	if changed {
		w.lastHash = hash
	}
	w.mu.Unlock()

	observability.Source().OnSnapshotLoaded(ctx, w.src.Name(), snap.NodeCount(), snap.EdgeCount(), changed, time.Since(start), nil)
	if !changed {
		w.logger.Debug("snapshot unchanged", "source", w.src.Name(), "hash", hash[:12])
		return false, nil
	}
	w.logger.Info("snapshot updated", "source", w.src.Name(), "nodes", snap.NodeCount(), "edges", snap.EdgeCount(), "hash", hash[:12])
	if w.onUpdate != nil {
		w.onUpdate(ctx, snap, hash)
	}
	return true, nil
}

func snapshotHash(s topology.Snapshot) (string, error) {
	data, err := topology.MarshalSnapshot(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
