package mirror

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Project-Sylos/Specular/internal/types"
)

var (
	// ErrParentCycle is returned when a primary parent chain loops
	ErrParentCycle = errors.New("parent cycle detected")
	// ErrUnresolvedParent marks a container whose chain does not reach the root
	ErrUnresolvedParent = errors.New("unresolved parent chain")
)

// PathMap maps container ids to absolute local directories.
// Every container given to ResolvePaths has either a path or a failure.
// It is read-only once built.
type PathMap struct {
	rootID   string
	paths    map[string]string
	failures map[string]error
}

// Lookup returns the resolved path of a container
func (m *PathMap) Lookup(id string) (string, bool) {
	p, ok := m.paths[id]
	return p, ok
}

// Failure returns why a container could not be resolved, or nil
func (m *PathMap) Failure(id string) error {
	return m.failures[id]
}

// Paths returns every resolved path, root included, sorted
func (m *PathMap) Paths() []string {
	out := make([]string, 0, len(m.paths))
	for _, p := range m.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Unresolved returns the ids of containers without a path, sorted
func (m *PathMap) Unresolved() []string {
	out := make([]string, 0, len(m.failures))
	for id := range m.failures {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ResolvePaths computes a local directory for every container by following
// primary parents up to rootID. A broken chain marks the container and
// everything below it unresolved; a cycle fails the whole resolution.
func ResolvePaths(containers map[string]types.Node, rootPath, rootID string) (*PathMap, error) {
	m := &PathMap{
		rootID:   rootID,
		paths:    map[string]string{rootID: rootPath},
		failures: make(map[string]error),
	}

	ids := make([]string, 0, len(containers))
	for id := range containers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := m.resolve(containers, id); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resolve walks up from id until it meets a memoized result, then unwinds
// the chain assigning paths (or the same failure) to every id on it
func (m *PathMap) resolve(containers map[string]types.Node, id string) error {
	var chain []string
	onChain := make(map[string]bool)

	var base string
	var failure error

	cur := id
	for {
		if p, ok := m.paths[cur]; ok {
			base = p
			break
		}
		if err, ok := m.failures[cur]; ok {
			failure = err
			break
		}
		if onChain[cur] {
			return fmt.Errorf("%w: container %s revisited while resolving %s", ErrParentCycle, cur, id)
		}

		node, ok := containers[cur]
		if !ok {
			// only reachable for parents, the first id always comes from containers
			failure = fmt.Errorf("%w: parent %s was not discovered", ErrUnresolvedParent, cur)
			break
		}
		chain = append(chain, cur)
		onChain[cur] = true

		parent := node.PrimaryParent()
		if parent == "" {
			failure = fmt.Errorf("%w: container %s has no parent", ErrUnresolvedParent, cur)
			break
		}
		cur = parent
	}

	for i := len(chain) - 1; i >= 0; i-- {
		cid := chain[i]
		if failure != nil {
			m.failures[cid] = failure
			continue
		}
		base = filepath.Join(base, SanitizeName(containers[cid].Name))
		m.paths[cid] = base
	}
	return nil
}

// SanitizeName turns a remote name into a single path segment
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	switch name {
	case "", ".", "..":
		return "_"
	}
	return name
}
