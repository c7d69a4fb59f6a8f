package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"
	"testing"

	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

var errDenied = errors.New("permission denied")

// fakeRemote is an in-memory Remote. Children are listed in insertion order.
type fakeRemote struct {
	mu sync.Mutex

	children  map[string][]types.Node
	markup    map[string]string
	raw       map[string][]byte
	listErr   map[string]error
	exportErr map[string]error
	hasMore   map[string]bool

	// ignoreQuery makes List return every child regardless of the query
	ignoreQuery bool

	listCalls   []string
	exportCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		children:  make(map[string][]types.Node),
		markup:    make(map[string]string),
		raw:       make(map[string][]byte),
		listErr:   make(map[string]error),
		exportErr: make(map[string]error),
		hasMore:   make(map[string]bool),
	}
}

// add lists n under container listedUnder
func (r *fakeRemote) add(listedUnder string, n types.Node) types.Node {
	if n.Extension == "" && n.TypeTag == types.TypeFile {
		n.Extension = types.SplitExtension(n.Name)
	}
	r.children[listedUnder] = append(r.children[listedUnder], n)
	return n
}

func (r *fakeRemote) container(id, name, parent string) types.Node {
	return r.add(parent, types.Node{ID: id, Name: name, TypeTag: types.TypeContainer, ParentIDs: []string{parent}})
}

func (r *fakeRemote) doc(id, name, parent, markdown string) types.Node {
	r.markup[id] = markdown
	return r.add(parent, types.Node{ID: id, Name: name, TypeTag: types.TypeDocument, ParentIDs: []string{parent}})
}

func (r *fakeRemote) file(id, name, parent string, data []byte) types.Node {
	r.raw[id] = data
	return r.add(parent, types.Node{ID: id, Name: name, TypeTag: types.TypeFile, ParentIDs: []string{parent}})
}

func (r *fakeRemote) sheet(id, name, parent string) types.Node {
	return r.add(parent, types.Node{ID: id, Name: name, TypeTag: types.TypeSpreadsheet, ParentIDs: []string{parent}})
}

func (r *fakeRemote) List(ctx context.Context, req types.ListRequest) (*types.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls = append(r.listCalls, req.ContainerID)

	if err := r.listErr[req.ContainerID]; err != nil {
		return nil, err
	}
	f, err := query.Parse(req.Query)
	if err != nil {
		return nil, err
	}

	nodes := []types.Node{}
	for _, n := range r.children[req.ContainerID] {
		keep := r.ignoreQuery || f.Matches(&n) || (req.IncludeContainers && n.IsContainer())
		if keep {
			nodes = append(nodes, n)
		}
	}
	return &types.ListResult{Success: true, Nodes: nodes, HasMore: r.hasMore[req.ContainerID]}, nil
}

func (r *fakeRemote) ExportAsMarkup(ctx context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exportCalls++
	if err := r.exportErr[id]; err != nil {
		return "", err
	}
	md, ok := r.markup[id]
	if !ok {
		return "", fmt.Errorf("no document %s", id)
	}
	return md, nil
}

func (r *fakeRemote) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exportCalls++
	if err := r.exportErr[id]; err != nil {
		return nil, err
	}
	data, ok := r.raw[id]
	if !ok {
		return nil, fmt.Errorf("no file %s", id)
	}
	return data, nil
}

// tree returns every path below root mapped to file contents; directories map to "/"
func tree(t *testing.T, fs billy.Filesystem, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	var walk func(dir string)
	walk = func(dir string) {
		infos, err := fs.ReadDir(dir)
		require.NoError(t, err)
		for _, fi := range infos {
			p := path.Join(dir, fi.Name())
			if fi.IsDir() {
				out[p] = "/"
				walk(p)
				continue
			}
			data, err := util.ReadFile(fs, p)
			require.NoError(t, err)
			out[p] = string(data)
		}
	}
	walk(root)
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exists(fs billy.Filesystem, p string) bool {
	_, err := fs.Stat(p)
	return !os.IsNotExist(err)
}
