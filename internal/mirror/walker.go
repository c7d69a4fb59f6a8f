package mirror

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/Project-Sylos/Specular/internal/metrics"
	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/types"
	"go.uber.org/zap"
)

// ErrRootUnlistable is returned when the root container itself cannot be listed
var ErrRootUnlistable = errors.New("root container cannot be listed")

// frame is the listed children of one container and the next index to visit
type frame struct {
	containerID string
	nodes       []types.Node
	next        int
}

// Walker discovers the remote tree depth-first.
// A Walker is single-use and not safe for concurrent use.
type Walker struct {
	lister   Lister
	log      *zap.Logger
	PageSize int

	err          error
	truncated    int
	listFailures int
	revisits     int
}

// NewWalker creates a walker over lister
func NewWalker(lister Lister, log *zap.Logger) *Walker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Walker{lister: lister, log: log}
}

// Walk yields every node below rootID in pre-order: a container is yielded
// before its subtree, and its subtree before its next sibling. Containers are
// always yielded and descended; other nodes are yielded only when they match
// filter. A container that fails to list is logged and skipped. When
// recursive is false only the root is listed.
//
// Every node id is yielded at most once and every container is listed at
// most once, so multi-parented nodes and listing cycles terminate. The
// first listing that returns a node wins.
func (w *Walker) Walk(ctx context.Context, rootID string, filter *query.Filter, recursive bool) iter.Seq[types.Node] {
	return func(yield func(types.Node) bool) {
		root, err := w.list(ctx, rootID, filter)
		if err != nil {
			w.err = fmt.Errorf("%w: %s: %v", ErrRootUnlistable, rootID, err)
			return
		}

		seen := map[string]bool{rootID: true}
		stack := []*frame{root}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				w.err = err
				return
			}

			top := stack[len(stack)-1]
			if top.next >= len(top.nodes) {
				stack = stack[:len(stack)-1]
				continue
			}
			node := top.nodes[top.next]
			top.next++

			if seen[node.ID] {
				w.revisits++
				w.log.Debug("Node already discovered under another parent",
					zap.String("node_id", node.ID),
					zap.String("listed_under", top.containerID))
				continue
			}

			if !node.IsContainer() {
				if !filter.Matches(&node) {
					continue
				}
				seen[node.ID] = true
				if !yield(node) {
					return
				}
				continue
			}

			seen[node.ID] = true
			if !yield(node) {
				return
			}
			if !recursive {
				continue
			}

			child, err := w.list(ctx, node.ID, filter)
			if err != nil {
				w.listFailures++
				metrics.RecordListFailure()
				w.log.Warn("Failed to list container, skipping branch",
					zap.String("container_id", node.ID),
					zap.String("name", node.Name),
					zap.Error(err))
				continue
			}
			if len(child.nodes) > 0 {
				stack = append(stack, child)
			}
		}
	}
}

func (w *Walker) list(ctx context.Context, containerID string, filter *query.Filter) (*frame, error) {
	res, err := w.lister.List(ctx, types.ListRequest{
		ContainerID:       containerID,
		Query:             filter.String(),
		IncludeContainers: true,
		PageSize:          w.PageSize,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("empty listing response")
	}
	if !res.Success {
		return nil, fmt.Errorf("listing failed: %s", res.Message)
	}
	if res.HasMore {
		w.truncated++
		w.log.Warn("Listing truncated to one page",
			zap.String("container_id", containerID),
			zap.Int("returned", len(res.Nodes)))
	}
	return &frame{containerID: containerID, nodes: res.Nodes}, nil
}

// Err returns the error that ended the walk early, if any
func (w *Walker) Err() error { return w.err }

// Truncated returns how many listings reported more results than one page
func (w *Walker) Truncated() int { return w.truncated }

// ListFailures returns how many non-root containers could not be listed
func (w *Walker) ListFailures() int { return w.listFailures }

// Revisits returns how many listed nodes were skipped because they had
// already been discovered
func (w *Walker) Revisits() int { return w.revisits }
