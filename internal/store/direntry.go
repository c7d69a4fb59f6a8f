package store

import (
	"io/fs"

	"github.com/Project-Sylos/Specular/internal/types"
)

// nodeDirEntry wraps a types.Node to implement fs.DirEntry
type nodeDirEntry struct {
	node *types.Node
}

// NewDirEntry creates a new fs.DirEntry from a types.Node
func NewDirEntry(node *types.Node) fs.DirEntry {
	return &nodeDirEntry{node: node}
}

// Name returns the name of the document (or container) described by the entry
func (de *nodeDirEntry) Name() string {
	return de.node.Name
}

// IsDir reports whether the entry describes a container
func (de *nodeDirEntry) IsDir() bool {
	return de.node.IsContainer()
}

// Type returns the type bits for the entry
func (de *nodeDirEntry) Type() fs.FileMode {
	if de.node.IsContainer() {
		return fs.ModeDir
	}
	return 0
}

// Info returns the FileInfo for the node described by the entry.
// The size is unknown until the node is opened and reported as 0.
func (de *nodeDirEntry) Info() (fs.FileInfo, error) {
	return newFileInfo(de.node, 0), nil
}
