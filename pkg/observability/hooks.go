// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through the registered hooks without
// depending on any observability backend. The defaults are no-ops; main
// registers real implementations at startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&logHooks{logger})
//	    observability.SetCacheHooks(&logHooks{logger})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, nodeCount, edgeCount)
//	// ... build the layout ...
//	observability.Layout().OnLayoutComplete(ctx, nodeCount, diagCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout construction.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, nodeCount, edgeCount int)
	OnLayoutComplete(ctx context.Context, nodeCount, diagnostics int, duration time.Duration, err error)

	// OnDiagnostic is called once per recovered layout fault.
	OnDiagnostic(ctx context.Context, code, message string)
}

// =============================================================================
// Highlight Hooks
// =============================================================================

// HighlightHooks receives hover events from viewers.
type HighlightHooks interface {
	// OnHoverEnter records a hover. active is the number of nodes left at
	// full opacity; err is non-nil for stale focus ids.
	OnHoverEnter(ctx context.Context, viewer, nodeID string, active int, err error)

	// OnHoverLeave records the end of a hover.
	OnHoverLeave(ctx context.Context, viewer string)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from snapshot sources.
type SourceHooks interface {
	// OnSnapshotLoaded records a load attempt. changed is false when the
	// snapshot matched the previously delivered one.
	OnSnapshotLoaded(ctx context.Context, source string, nodeCount, edgeCount int, changed bool, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, key string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnDiagnostic(context.Context, string, string)                     {}

// NoopHighlightHooks is a no-op implementation of HighlightHooks.
type NoopHighlightHooks struct{}

func (NoopHighlightHooks) OnHoverEnter(context.Context, string, string, int, error) {}
func (NoopHighlightHooks) OnHoverLeave(context.Context, string)                     {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnSnapshotLoaded(context.Context, string, int, int, bool, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	highlightHooks HighlightHooks = NoopHighlightHooks{}
	sourceHooks    SourceHooks    = NoopSourceHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks. Nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetHighlightHooks registers custom highlight hooks. Nil is ignored.
func SetHighlightHooks(h HighlightHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		highlightHooks = h
	}
}

// SetSourceHooks registers custom source hooks. Nil is ignored.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Highlight returns the registered highlight hooks.
func Highlight() HighlightHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return highlightHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	highlightHooks = NoopHighlightHooks{}
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
}
