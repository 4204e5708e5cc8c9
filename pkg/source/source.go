// Package source delivers topology snapshots from outside collaborators.
//
// A [Source] returns a complete snapshot on every Load. Two adapters exist:
// [FileSource] reads one JSON document from disk and [CacheSource] reads the
// node and edge lists the capture job keeps in a [cache.Cache]. A [Watcher]
// polls any Source and hands each changed snapshot to a callback, replacing
// whatever the consumer held before.
package source

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topograph/pkg/topology"
)

// Source loads the current topology snapshot.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Load returns the full current snapshot. Implementations return a
	// fresh value on every call.
	Load(ctx context.Context) (topology.Snapshot, error)
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
