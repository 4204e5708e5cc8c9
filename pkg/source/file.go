package source

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
)

// FileSource reads a snapshot document of the form {"nodes": [...],
// "edges": [...]} from a file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns "file:<path>".
func (s *FileSource) Name() string { return "file:" + s.Path }

// Load reads and decodes the file.
func (s *FileSource) Load(ctx context.Context) (topology.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return topology.Snapshot{}, err
	}
	snap, err := topology.ReadSnapshotFile(s.Path)
	switch {
	case err == nil:
		return snap, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return topology.Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot file %s", s.Path)
	default:
		return topology.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "read snapshot %s", s.Path)
	}
}

var _ Source = (*FileSource)(nil)
