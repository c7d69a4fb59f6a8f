package mirror

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Project-Sylos/Specular/internal/config"
	"github.com/Project-Sylos/Specular/internal/metrics"
	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the discovered tree: containers by id and files in walk order
type Snapshot struct {
	Containers map[string]types.Node
	Files      []types.Node
}

// Report summarizes a completed run
type Report struct {
	RunID          string        `json:"run_id"`
	Containers     int           `json:"containers"`
	Files          int           `json:"files"`
	Written        int           `json:"written"`
	Skipped        int           `json:"skipped"`
	Unplaced       int           `json:"unplaced"`
	ExportFailures int           `json:"export_failures"`
	ListFailures   int           `json:"list_failures"`
	Revisits       int           `json:"revisits"`
	Unresolved     int           `json:"unresolved"`
	Truncated      int           `json:"truncated"`
	Duration       time.Duration `json:"duration"`
}

// Engine runs mirror passes from a remote onto a filesystem
type Engine struct {
	cfg    types.MirrorConfig
	remote Remote
	fs     billy.Filesystem
	log    *zap.Logger
}

// NewEngine creates an engine. A nil logger discards logs.
func NewEngine(cfg types.MirrorConfig, remote Remote, fs billy.Filesystem, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, remote: remote, fs: fs, log: log}
}

// Run performs one full mirror pass. Per-item export problems and
// unresolved containers are counted in the report; configuration errors,
// an unlistable root, parent cycles and filesystem errors fail the run.
func (e *Engine) Run(ctx context.Context) (_ *Report, err error) {
	start := time.Now()
	report := &Report{RunID: uuid.New().String()}
	log := e.log.With(zap.String("run_id", report.RunID))

	defer func() {
		metrics.RecordRun(err == nil, time.Since(start))
	}()

	if err := config.ValidateMirror(&e.cfg); err != nil {
		return nil, fmt.Errorf("invalid mirror configuration: %w", err)
	}
	filter, err := query.Parse(e.cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror configuration: %w", err)
	}

	log.Info("Starting mirror run",
		zap.String("root_container_id", e.cfg.RootContainerID),
		zap.String("output_root_path", e.cfg.OutputRootPath),
		zap.String("query", filter.String()),
		zap.Bool("recursive", e.cfg.Recursive))

	// Discovery
	walker := NewWalker(e.remote, log)
	snap := &Snapshot{Containers: make(map[string]types.Node)}
	for node := range walker.Walk(ctx, e.cfg.RootContainerID, filter, e.cfg.Recursive) {
		if node.IsContainer() {
			snap.Containers[node.ID] = node
		} else {
			snap.Files = append(snap.Files, node)
		}
	}
	if err := walker.Err(); err != nil {
		return nil, fmt.Errorf("failed to discover remote tree: %w", err)
	}
	report.Containers = len(snap.Containers)
	report.Files = len(snap.Files)
	report.Truncated = walker.Truncated()
	report.ListFailures = walker.ListFailures()
	report.Revisits = walker.Revisits()

	// Resolution
	rootPath := filepath.Clean(e.cfg.OutputRootPath)
	pm, err := ResolvePaths(snap.Containers, rootPath, e.cfg.RootContainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve container paths: %w", err)
	}
	unresolved := pm.Unresolved()
	report.Unresolved = len(unresolved)
	for _, id := range unresolved {
		log.Warn("Container path unresolved, subtree will not be written",
			zap.String("container_id", id),
			zap.String("name", snap.Containers[id].Name),
			zap.Error(pm.Failure(id)))
	}

	// Directories complete before any write. A non-recursive run only
	// writes into the root, so child containers get no directory.
	dirs := []string{rootPath}
	if e.cfg.Recursive {
		dirs = pm.Paths()
	}
	mat := NewMaterializer(e.fs, log)
	if err := mat.EnsureDirectories(dirs); err != nil {
		return nil, err
	}

	items, err := e.export(ctx, snap.Files, log)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Failed {
			report.ExportFailures++
		}
	}

	assignNames(items, pm, directoryNames(snap, pm))

	if err := e.write(ctx, mat, items, pm, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	log.Info("Mirror run complete",
		zap.Int("containers", report.Containers),
		zap.Int("files", report.Files),
		zap.Int("written", report.Written),
		zap.Int("skipped", report.Skipped),
		zap.Int("unplaced", report.Unplaced),
		zap.Int("export_failures", report.ExportFailures),
		zap.Duration("elapsed", report.Duration))
	return report, nil
}

// export fetches every file concurrently, bounded by the configured concurrency
func (e *Engine) export(ctx context.Context, files []types.Node, log *zap.Logger) ([]ExportedItem, error) {
	d := NewDispatcher(e.remote, log)
	items := make([]ExportedItem, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			items[i] = d.Export(gctx, f, f.PrimaryParent())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mirror run cancelled during export: %w", err)
	}
	return items, nil
}

// write writes every item and waits for all of them. The first filesystem
// error stops the remaining writes and is returned.
func (e *Engine) write(ctx context.Context, mat *Materializer, items []ExportedItem, pm *PathMap, report *Report) error {
	var written, skipped, unplaced atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := mat.WriteItem(items[i], pm)
			if err != nil {
				return err
			}
			metrics.RecordItem(outcome.String())
			switch outcome {
			case OutcomeWritten:
				written.Add(1)
			case OutcomeSkipped:
				skipped.Add(1)
			case OutcomeUnplaced:
				unplaced.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to materialize items: %w", err)
	}

	report.Written = int(written.Load())
	report.Skipped = int(skipped.Load())
	report.Unplaced = int(unplaced.Load())
	return nil
}

// directoryNames lists the subdirectory names inside each resolved directory
func directoryNames(snap *Snapshot, pm *PathMap) map[string][]string {
	out := make(map[string][]string)
	for id := range snap.Containers {
		p, ok := pm.Lookup(id)
		if !ok {
			continue
		}
		dir := filepath.Dir(p)
		out[dir] = append(out[dir], filepath.Base(p))
	}
	return out
}
