// Package mirror reproduces a remote container tree on a local filesystem.
//
// A run walks the remote tree, resolves a local directory for every
// container from its primary parent chain, exports each file through a
// content-type strategy and writes the payloads below the resolved
// directories. Directories are created in full before the first write.
package mirror

import (
	"context"

	"github.com/Project-Sylos/Specular/internal/types"
)

// Lister returns one page of the immediate children of a container
type Lister interface {
	List(ctx context.Context, req types.ListRequest) (*types.ListResult, error)
}

// Exporter fetches node content from the remote
type Exporter interface {
	// ExportAsMarkup converts a native document to Markdown.
	ExportAsMarkup(ctx context.Context, id string) (string, error)
	// FetchRaw returns the stored bytes of a non-container node.
	FetchRaw(ctx context.Context, id string) ([]byte, error)
}

// Remote is everything a mirror run needs from the remote store
type Remote interface {
	Lister
	Exporter
}
