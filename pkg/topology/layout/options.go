package layout

// Default node box size in layout units.
const (
	DefaultNodeWidth  = 285.0
	DefaultNodeHeight = 260.0
)

// Options configures [Build].
type Options struct {
	// NodeWidth is the horizontal distance between neighbouring node centres.
	NodeWidth float64
	// NodeHeight is the vertical distance between depth levels.
	NodeHeight float64
	// StrictSingleRoot makes Build fail on snapshots with more than one root
	// instead of laying them out as a forest.
	StrictSingleRoot bool
}

// Option mutates Options.
type Option func(*Options)

// WithNodeSize overrides the node box size. Non-positive values keep the
// default for that dimension.
func WithNodeSize(width, height float64) Option {
	return func(o *Options) {
		if width > 0 {
			o.NodeWidth = width
		}
		if height > 0 {
			o.NodeHeight = height
		}
	}
}

// WithStrictSingleRoot rejects forests with a MULTI_ROOT_GRAPH error.
func WithStrictSingleRoot() Option {
	return func(o *Options) { o.StrictSingleRoot = true }
}

func newOptions(opts []Option) Options {
	o := Options{NodeWidth: DefaultNodeWidth, NodeHeight: DefaultNodeHeight}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
