package store

import (
	"io"
	"io/fs"

	"github.com/Project-Sylos/Specular/internal/types"
)

// storeFile implements fs.File for non-container nodes
type storeFile struct {
	node   *types.Node
	data   []byte
	offset int64
}

// storeDir implements fs.ReadDirFile for containers
type storeDir struct {
	node    *types.Node
	entries []fs.DirEntry
}

// Stat returns the FileInfo structure describing file
func (f *storeFile) Stat() (fs.FileInfo, error) {
	return newFileInfo(f.node, int64(len(f.data))), nil
}

// Read reads up to len(b) bytes from the file
func (f *storeFile) Read(b []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}

	n := copy(b, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

// Close releases nothing; the content is held in memory
func (f *storeFile) Close() error {
	return nil
}

// Stat returns the FileInfo structure describing dir
func (d *storeDir) Stat() (fs.FileInfo, error) {
	return newFileInfo(d.node, 0), nil
}

// Read fails: directories have no byte content
func (d *storeDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.node.Name, Err: fs.ErrInvalid}
}

// ReadDir reads the contents of the directory and returns
// a slice of up to n DirEntry values in listing order
func (d *storeDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		result := d.entries
		d.entries = nil
		if result == nil {
			result = []fs.DirEntry{}
		}
		return result, nil
	}

	if len(d.entries) == 0 {
		return nil, io.EOF
	}

	count := min(n, len(d.entries))
	result := make([]fs.DirEntry, count)
	copy(result, d.entries[:count])
	d.entries = d.entries[count:]
	return result, nil
}

// Close releases nothing
func (d *storeDir) Close() error {
	return nil
}
