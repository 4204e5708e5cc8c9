// Package view glues the current topology snapshot to the viewers looking
// at it.
//
// A [Controller] owns the latest layout and one [highlight.Highlighter] per
// viewer. Each new snapshot replaces the layout and returns every viewer to
// the idle state. All methods are safe for concurrent use; hover events are
// applied one at a time.
package view

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/observability"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Status summarises the controller state.
type Status struct {
	Version   int       `json:"version"`
	Hash      string    `json:"hash,omitempty"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Roots     int       `json:"roots"`
	Viewers   int       `json:"viewers"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Controller tracks the current layout and per-viewer hover state.
type Controller struct {
	layoutOpts []layout.Option
	logger     *log.Logger
	now        func() time.Time

	mu        sync.Mutex
	res       *layout.Result
	hash      string
	version   int
	updatedAt time.Time
	viewers   map[string]*highlight.Highlighter
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLayoutOptions sets the options passed to [layout.Build].
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(c *Controller) { c.layoutOpts = append(c.layoutOpts, opts...) }
}

// NewController returns a controller with no snapshot.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		now:     time.Now,
		viewers: make(map[string]*highlight.Highlighter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update lays out snap and makes it current. Every viewer is reset to the
// idle state of the new layout. On error the previous layout stays.
func (c *Controller) Update(ctx context.Context, snap topology.Snapshot, hash string) error {
	res, err := Layout(ctx, snap, c.logger, c.layoutOpts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.res = res
	c.hash = hash
	c.version++
	c.updatedAt = c.now()
	for id := range c.viewers {
		c.viewers[id] = highlight.New(res)
	}
	c.logger.Info("layout updated", "version", c.version, "nodes", len(res.Nodes), "edges", len(res.Edges), "viewers", len(c.viewers))
	return nil
}

// Apply is Update with errors logged instead of returned. Its signature
// matches the snapshot watcher callback. Snapshots refused by the layout
// policy are logged at warn level, anything else at error level.
func (c *Controller) Apply(ctx context.Context, snap topology.Snapshot, hash string) {
	err := c.Update(ctx, snap, hash)
	switch {
	case err == nil:
	case errors.IsTopologyFault(err):
		c.logger.Warn("snapshot refused by layout policy, keeping previous", "code", errors.GetCode(err), "err", err)
	default:
		c.logger.Error("layout rejected, keeping previous", "err", err)
	}
}

// Layout returns the current layout.
func (c *Controller) Layout() (*layout.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.res == nil {
		return nil, errors.New(errors.ErrCodeNoSnapshot, "no topology loaded yet")
	}
	return c.res, nil
}

// Status returns a summary of the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		Version:   c.version,
		Hash:      c.hash,
		Viewers:   len(c.viewers),
		UpdatedAt: c.updatedAt,
	}
	if c.res != nil {
		st.Nodes = len(c.res.Nodes)
		st.Edges = len(c.res.Edges)
		st.Roots = len(c.res.Roots)
	}
	return st
}

// OpenViewer registers a viewer and returns its id.
func (c *Controller) OpenViewer() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.res == nil {
		return "", errors.New(errors.ErrCodeNoSnapshot, "no topology loaded yet")
	}
	id := uuid.NewString()
	c.viewers[id] = highlight.New(c.res)
	c.logger.Debug("viewer opened", "viewer", id)
	return id, nil
}

// CloseViewer forgets a viewer.
func (c *Controller) CloseViewer(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.viewers[id]; !ok {
		return errViewerNotFound(id)
	}
	delete(c.viewers, id)
	c.logger.Debug("viewer closed", "viewer", id)
	return nil
}

// State returns a viewer's visual state.
func (c *Controller) State(id string) (highlight.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.viewers[id]
	if !ok {
		return highlight.State{}, errViewerNotFound(id)
	}
	return h.State(), nil
}

// HoverEnter focuses node for a viewer. A node missing from the current
// layout yields STALE_FOCUS_NODE together with the unchanged state.
func (c *Controller) HoverEnter(ctx context.Context, viewer string, node topology.NodeID) (highlight.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.viewers[viewer]
	if !ok {
		return highlight.State{}, errViewerNotFound(viewer)
	}
	st, err := h.HoverEnter(node)
	observability.Highlight().OnHoverEnter(ctx, viewer, string(node), len(st.Active()), err)
	if err != nil {
		c.logger.Debug("stale hover ignored", "viewer", viewer, "node", node)
	}
	return st, err
}

// HoverLeave returns a viewer to the base state.
func (c *Controller) HoverLeave(ctx context.Context, viewer string) (highlight.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.viewers[viewer]
	if !ok {
		return highlight.State{}, errViewerNotFound(viewer)
	}
	observability.Highlight().OnHoverLeave(ctx, viewer)
	return h.HoverLeave(), nil
}

func errViewerNotFound(id string) error {
	return errors.New(errors.ErrCodeViewerNotFound, "viewer %q not found", id)
}

// Layout builds a layout, reporting to the observability hooks and logging
// every diagnostic at warn level.
func Layout(ctx context.Context, snap topology.Snapshot, logger *log.Logger, opts ...layout.Option) (*layout.Result, error) {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, snap.NodeCount(), snap.EdgeCount())
	start := time.Now()

	res, err := layout.Build(snap, opts...)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	for _, d := range res.Diagnostics {
		hooks.OnDiagnostic(ctx, string(d.Code), d.Message)
		if logger != nil {
			logger.Warn(d.Message, "code", d.Code)
		}
	}
	hooks.OnLayoutComplete(ctx, len(res.Nodes), len(res.Diagnostics), time.Since(start), nil)
	return res, nil
}
