package store

import (
	"io/fs"
	"time"

	"github.com/Project-Sylos/Specular/internal/types"
)

// nodeFileInfo wraps a types.Node to implement fs.FileInfo
type nodeFileInfo struct {
	node *types.Node
	size int64
}

// newFileInfo creates a new fs.FileInfo from a types.Node and its content length
func newFileInfo(node *types.Node, size int64) fs.FileInfo {
	return &nodeFileInfo{node: node, size: size}
}

// Name returns the base name of the node; the root container is "."
func (fi *nodeFileInfo) Name() string {
	if fi.node.ID == types.RootID {
		return "."
	}
	return fi.node.Name
}

// Size returns the stored byte length once the file has been opened; 0 for listings and directories
func (fi *nodeFileInfo) Size() int64 {
	return fi.size
}

// Mode returns read-only file mode bits
func (fi *nodeFileInfo) Mode() fs.FileMode {
	if fi.node.IsContainer() {
		return fs.ModeDir | 0555
	}
	return 0444
}

// ModTime returns the node's modification time
func (fi *nodeFileInfo) ModTime() time.Time {
	return fi.node.ModifiedTime
}

// IsDir reports whether the node is a container
func (fi *nodeFileInfo) IsDir() bool {
	return fi.node.IsContainer()
}

// Sys returns the underlying *types.Node
func (fi *nodeFileInfo) Sys() any {
	return fi.node
}
