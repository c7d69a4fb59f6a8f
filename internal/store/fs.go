package store

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/Project-Sylos/Specular/internal/types"
)

// storeFS is a read-only io/fs view of the store.
// Containers are directories and every other node is a regular file holding
// its stored bytes. Path segments match node names; the first match in listing
// order wins when siblings share a name.
type storeFS struct {
	s   *Store
	ctx context.Context
}

// AsFS returns a read-only fs.FS rooted at the store's root container
func (s *Store) AsFS(ctx context.Context) fs.FS {
	return &storeFS{s: s, ctx: ctx}
}

// Open implements fs.FS
func (f *storeFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	node, err := f.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fsError(err)}
	}

	if node.IsContainer() {
		res, err := f.s.List(f.ctx, types.ListRequest{ContainerID: node.ID})
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fsError(err)}
		}
		entries := make([]fs.DirEntry, 0, len(res.Nodes))
		for i := range res.Nodes {
			entries = append(entries, NewDirEntry(&res.Nodes[i]))
		}
		return &storeDir{node: node, entries: entries}, nil
	}

	data, err := f.s.FetchRaw(f.ctx, node.ID)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fsError(err)}
	}
	return &storeFile{node: node, data: data}, nil
}

// lookup walks name segment by segment from the root
func (f *storeFS) lookup(name string) (*types.Node, error) {
	node, err := f.s.GetNode(f.ctx, types.RootID)
	if err != nil {
		return nil, err
	}
	if name == "." {
		return node, nil
	}

	for _, seg := range strings.Split(name, "/") {
		if !node.IsContainer() {
			return nil, fs.ErrNotExist
		}
		res, err := f.s.List(f.ctx, types.ListRequest{ContainerID: node.ID})
		if err != nil {
			return nil, err
		}
		var next *types.Node
		for i := range res.Nodes {
			if res.Nodes[i].Name == seg {
				next = &res.Nodes[i]
				break
			}
		}
		if next == nil {
			return nil, fs.ErrNotExist
		}
		node = next
	}
	return node, nil
}

func fsError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fs.ErrNotExist
	case errors.Is(err, ErrPermissionDenied):
		return fs.ErrPermission
	}
	return err
}
