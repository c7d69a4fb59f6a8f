package mirror

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Project-Sylos/Specular/internal/metrics"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// WriteOutcome is the result of writing one item
type WriteOutcome int

const (
	OutcomeWritten WriteOutcome = iota
	OutcomeSkipped
	OutcomeUnplaced
)

func (o WriteOutcome) String() string {
	switch o {
	case OutcomeWritten:
		return metrics.OutcomeWritten
	case OutcomeSkipped:
		return metrics.OutcomeSkipped
	}
	return metrics.OutcomeUnplaced
}

// Materializer creates the local tree on a billy filesystem
type Materializer struct {
	fs  billy.Filesystem
	log *zap.Logger
}

// NewMaterializer creates a materializer writing to fs
func NewMaterializer(fs billy.Filesystem, log *zap.Logger) *Materializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Materializer{fs: fs, log: log}
}

// EnsureDirectories creates every missing directory in paths, parents
// included. Existing directories are left as they are. Any filesystem
// error is returned.
func (m *Materializer) EnsureDirectories(paths []string) error {
	for _, p := range paths {
		fi, err := m.fs.Stat(p)
		switch {
		case err == nil:
			if !fi.IsDir() {
				return fmt.Errorf("failed to create directory %s: path exists and is not a directory", p)
			}
			continue
		case !os.IsNotExist(err):
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if err := m.fs.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
	}
	return nil
}

// WriteItem writes item below its parent's resolved directory, replacing any
// existing file. Items without a resolved parent or with an empty payload
// are not written. Only filesystem errors are returned.
func (m *Materializer) WriteItem(item ExportedItem, pm *PathMap) (WriteOutcome, error) {
	dir, ok := pm.Lookup(item.ParentContainerID)
	if !ok {
		fields := []zap.Field{
			zap.String("node_id", item.Node.ID),
			zap.String("name", item.Node.Name),
			zap.String("parent_id", item.ParentContainerID),
		}
		if cause := pm.Failure(item.ParentContainerID); cause != nil {
			fields = append(fields, zap.Error(cause))
		}
		m.log.Warn("Parent directory unresolved, item not written", fields...)
		return OutcomeUnplaced, nil
	}

	name := item.FileName
	if name == "" {
		name = OutputName(&item.Node, item.Strategy)
	}
	target := filepath.Join(dir, name)

	if item.Payload == "" {
		m.log.Debug("Empty payload, skipping write", zap.String("path", target))
		return OutcomeSkipped, nil
	}

	f, err := m.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return OutcomeWritten, fmt.Errorf("failed to open %s: %w", target, err)
	}
	if _, err := f.Write([]byte(item.Payload)); err != nil {
		f.Close()
		return OutcomeWritten, fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return OutcomeWritten, fmt.Errorf("failed to close %s: %w", target, err)
	}

	m.log.Debug("Wrote item", zap.String("path", target), zap.Int("bytes", len(item.Payload)))
	return OutcomeWritten, nil
}
