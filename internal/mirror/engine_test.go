package mirror

import (
	"context"
	"testing"

	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mirrorConfig() types.MirrorConfig {
	return types.MirrorConfig{
		RootContainerID: types.RootID,
		OutputRootPath:  "/out",
		Recursive:       true,
		Concurrency:     4,
	}
}

func TestEngineNestedDocument(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Docs", types.RootID)
	r.doc("D", "Plan", "A", "# Plan\n\n- ship it\n")

	fs := memfs.New()
	report, err := NewEngine(mirrorConfig(), r, fs, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	fi, err := fs.Stat("/out/Docs")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	data, err := util.ReadFile(fs, "/out/Docs/Plan.md")
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n\n- ship it\n", string(data))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.Containers)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Written)
}

func TestEngineJSONFile(t *testing.T) {
	r := newFakeRemote()
	r.file("X", "X.json", types.RootID, []byte(`{"name":"x","n":[1]}`))

	fs := memfs.New()
	_, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	data, err := util.ReadFile(fs, "/out/X.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"x\",\n  \"n\": [\n    1\n  ]\n}\n", string(data))
}

func TestEngineOrphanedContainer(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Docs", types.RootID)
	r.doc("ok", "Kept", "A", "kept\n")
	// listed under the root but with no parents of its own
	r.add(types.RootID, types.Node{ID: "B", Name: "Orphan", TypeTag: types.TypeContainer})
	r.doc("lost", "Lost", "B", "lost\n")
	r.container("B1", "Below", "B")
	r.doc("deeper", "Deeper", "B1", "deeper\n")

	fs := memfs.New()
	report, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Unresolved)
	assert.Equal(t, 2, report.Unplaced)
	assert.Equal(t, 1, report.Written)
	assert.True(t, exists(fs, "/out/Docs/Kept.md"))
	assert.False(t, exists(fs, "/out/Orphan"))
	assert.False(t, exists(fs, "/out/Lost.md"))
}

func TestEngineNonRecursive(t *testing.T) {
	r := newFakeRemote()
	r.doc("top", "Top", types.RootID, "top\n")
	r.container("A", "Docs", types.RootID)
	r.doc("inner", "Inner", "A", "inner\n")

	cfg := mirrorConfig()
	cfg.Recursive = false

	fs := memfs.New()
	report, err := NewEngine(cfg, r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{types.RootID}, r.listCalls)
	assert.Equal(t, 1, report.Written)
	assert.True(t, exists(fs, "/out/Top.md"))
	assert.False(t, exists(fs, "/out/Docs"), "unvisited containers get no directory")
	assert.False(t, exists(fs, "/out/Docs/Inner.md"))
}

func TestEngineIdempotent(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Docs", types.RootID)
	r.container("B", "Deep", "A")
	r.doc("d1", "Plan", "A", "# Plan\n")
	r.doc("d2", "Plan", "A", "# Other plan\n")
	r.file("j", "cfg.json", "B", []byte(`{"a":1}`))
	r.sheet("s", "Budget", "B")
	r.file("p", "photo.png", types.RootID, []byte{0x89, 'P', 'N', 'G'})

	fs := memfs.New()
	e := NewEngine(mirrorConfig(), r, fs, nil)

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	first := tree(t, fs, "/out")

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	second := tree(t, fs, "/out")

	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"/out/Docs",
		"/out/Docs/Deep",
		"/out/Docs/Deep/cfg.json",
		"/out/Docs/Plan (2).md",
		"/out/Docs/Plan.md",
	}, sortedKeys(first))
	assert.Equal(t, "# Plan\n", first["/out/Docs/Plan.md"])
	assert.Equal(t, "# Other plan\n", first["/out/Docs/Plan (2).md"])
}

func TestEngineEmptyPayloadKeepsPreviousFile(t *testing.T) {
	r := newFakeRemote()
	r.doc("d", "Plan", types.RootID, "# v1\n")

	fs := memfs.New()
	e := NewEngine(mirrorConfig(), r, fs, nil)
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	r.exportErr["d"] = errDenied
	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.ExportFailures)

	data, err := util.ReadFile(fs, "/out/Plan.md")
	require.NoError(t, err)
	assert.Equal(t, "# v1\n", string(data))
}

func TestEngineIsolatesFailures(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Locked", types.RootID)
	r.listErr["A"] = errDenied
	r.doc("bad", "Bad", types.RootID, "")
	r.exportErr["bad"] = errDenied
	r.doc("good", "Good", types.RootID, "good\n")

	fs := memfs.New()
	report, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.ListFailures)
	assert.Equal(t, 1, report.ExportFailures)
	assert.Equal(t, 1, report.Written)
	assert.True(t, exists(fs, "/out/Locked"))
	assert.True(t, exists(fs, "/out/Good.md"))
}

func TestEngineFileNeverShadowsDirectory(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "notes.json", types.RootID)
	r.file("f", "notes.json", types.RootID, []byte(`[]`))

	fs := memfs.New()
	_, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	fi, err := fs.Stat("/out/notes.json")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.True(t, exists(fs, "/out/notes (2).json"))
}

func TestEngineFatalErrors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		tests := map[string]func(*types.MirrorConfig){
			"relative output":  func(c *types.MirrorConfig) { c.OutputRootPath = "out" },
			"missing root":     func(c *types.MirrorConfig) { c.RootContainerID = "" },
			"bad query":        func(c *types.MirrorConfig) { c.Query = "name ~ 'x'" },
			"zero concurrency": func(c *types.MirrorConfig) { c.Concurrency = 0 },
		}
		for name, modify := range tests {
			t.Run(name, func(t *testing.T) {
				r := newFakeRemote()
				cfg := mirrorConfig()
				modify(&cfg)
				_, err := NewEngine(cfg, r, memfs.New(), nil).Run(context.Background())
				assert.Error(t, err)
				assert.Empty(t, r.listCalls, "no traversal before config is valid")
			})
		}
	})

	t.Run("root unlistable", func(t *testing.T) {
		r := newFakeRemote()
		r.listErr[types.RootID] = errDenied
		_, err := NewEngine(mirrorConfig(), r, memfs.New(), nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrRootUnlistable)
	})

	t.Run("parent cycle", func(t *testing.T) {
		r := newFakeRemote()
		a := r.add(types.RootID, types.Node{ID: "a", Name: "A", TypeTag: types.TypeContainer, ParentIDs: []string{"b", types.RootID}})
		r.add("a", types.Node{ID: "b", Name: "B", TypeTag: types.TypeContainer, ParentIDs: []string{"a"}})
		// the listings loop as well: a is listed under its own child
		r.add("b", a)
		fs := memfs.New()
		_, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrParentCycle)
		assert.False(t, exists(fs, "/out"))
	})

	t.Run("file where a directory belongs", func(t *testing.T) {
		r := newFakeRemote()
		r.container("A", "Docs", types.RootID)
		fs := memfs.New()
		require.NoError(t, util.WriteFile(fs, "/out/Docs", []byte("x"), 0o644))
		_, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		r := newFakeRemote()
		r.doc("d", "Plan", types.RootID, "x\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewEngine(mirrorConfig(), r, memfs.New(), nil).Run(ctx)
		assert.Error(t, err)
	})
}

func TestEngineMultiParentDocument(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Docs", types.RootID)
	r.container("B", "Shared", types.RootID)
	d := r.doc("D", "Plan", "A", "# Plan\n")
	d.ParentIDs = []string{"A", "B"}
	r.children["A"][0] = d
	r.add("B", d)

	fs := memfs.New()
	report, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 1, r.exportCalls)
	assert.Equal(t, 1, report.Revisits)
	assert.Equal(t, map[string]string{
		"/out/Docs":         "/",
		"/out/Docs/Plan.md": "# Plan\n",
		"/out/Shared":       "/",
	}, tree(t, fs, "/out"))
}

func TestEngineMultiParentContainerListedOnce(t *testing.T) {
	r := newFakeRemote()
	r.container("A", "Docs", types.RootID)
	r.container("B", "Shared", types.RootID)
	c := r.container("C", "Team", "A")
	c.ParentIDs = []string{"A", "B"}
	r.children["A"][0] = c
	r.add("B", c)
	r.doc("D", "Plan", "C", "# Plan\n")

	fs := memfs.New()
	report, err := NewEngine(mirrorConfig(), r, fs, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Containers)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 1, countCalls(r.listCalls, "C"))
	assert.True(t, exists(fs, "/out/Docs/Team/Plan.md"))
	assert.False(t, exists(fs, "/out/Docs/Team/Plan (2).md"))
}
