package mirror

import (
	"context"
	"testing"

	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		name string
		node types.Node
		want Strategy
	}{
		{"document", types.Node{Name: "Plan", TypeTag: types.TypeDocument}, StrategyEditableDocument},
		{"document named json", types.Node{Name: "notes.json", TypeTag: types.TypeDocument}, StrategyEditableDocument},
		{"json file", types.Node{Name: "data.json", TypeTag: types.TypeFile, Extension: "json"}, StrategyJSONFile},
		{"json extension upper case", types.Node{Name: "DATA.JSON", TypeTag: types.TypeFile, Extension: "JSON"}, StrategyJSONFile},
		{"json by name only", types.Node{Name: "x.Json", TypeTag: types.TypeFile}, StrategyJSONFile},
		{"json container", types.Node{Name: "dir.json", TypeTag: types.TypeContainer, Extension: "json"}, StrategyUnsupported},
		{"spreadsheet", types.Node{Name: "Budget", TypeTag: types.TypeSpreadsheet}, StrategyUnsupported},
		{"image", types.Node{Name: "photo.png", TypeTag: types.TypeFile, Extension: "png"}, StrategyUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrategyFor(&tt.node))
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name      string
		extension string
		strategy  Strategy
		want      string
	}{
		{"Plan", "", StrategyEditableDocument, "Plan.md"},
		{"v1.2 Release", "", StrategyEditableDocument, "v1.2 Release.md"},
		{"Plan.md", "md", StrategyEditableDocument, "Plan.md"},
		{"Plan.MD", "md", StrategyEditableDocument, "Plan.MD"},
		{"Plan.txt", "txt", StrategyEditableDocument, "Plan.md"},
		{"Report.DOCX", "docx", StrategyEditableDocument, "Report.md"},
		{"a/b", "", StrategyEditableDocument, "a_b.md"},
		{"data.json", "json", StrategyJSONFile, "data.json"},
		{"photo.png", "png", StrategyUnsupported, "photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := types.Node{Name: tt.name, Extension: tt.extension}
			assert.Equal(t, tt.want, OutputName(&n, tt.strategy))
		})
	}
}

func TestDispatcherExport(t *testing.T) {
	ctx := context.Background()
	r := newFakeRemote()
	plan := r.doc("plan", "Plan", types.RootID, "# Plan\n")
	data := r.file("data", "data.json", types.RootID, []byte(`{"b":1,"a":[1,2]}`))
	broken := r.file("broken", "broken.json", types.RootID, []byte(`{"b":`))
	empty := r.file("empty", "empty.json", types.RootID, []byte("  "))
	sheet := r.sheet("sheet", "Budget", types.RootID)
	denied := r.doc("denied", "Secret", types.RootID, "")
	r.exportErr["denied"] = errDenied

	d := NewDispatcher(r, nil)

	t.Run("document", func(t *testing.T) {
		item := d.Export(ctx, plan, types.RootID)
		assert.Equal(t, StrategyEditableDocument, item.Strategy)
		assert.Equal(t, "# Plan\n", item.Payload)
		assert.Equal(t, "Plan.md", item.FileName)
		assert.Equal(t, types.RootID, item.ParentContainerID)
		assert.False(t, item.Failed)
	})

	t.Run("json is re-indented in key order", func(t *testing.T) {
		item := d.Export(ctx, data, types.RootID)
		assert.Equal(t, StrategyJSONFile, item.Strategy)
		assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}\n", item.Payload)
		assert.Equal(t, "data.json", item.FileName)
	})

	t.Run("malformed json degrades to empty", func(t *testing.T) {
		item := d.Export(ctx, broken, types.RootID)
		assert.Empty(t, item.Payload)
		assert.True(t, item.Failed)
	})

	t.Run("blank json is empty without failure", func(t *testing.T) {
		item := d.Export(ctx, empty, types.RootID)
		assert.Empty(t, item.Payload)
		assert.False(t, item.Failed)
	})

	t.Run("fetch error degrades to empty", func(t *testing.T) {
		item := d.Export(ctx, denied, types.RootID)
		assert.Empty(t, item.Payload)
		assert.True(t, item.Failed)
		assert.Equal(t, "Secret.md", item.FileName)
	})

	t.Run("unsupported never fetches", func(t *testing.T) {
		before := r.exportCalls
		item := d.Export(ctx, sheet, types.RootID)
		assert.Equal(t, StrategyUnsupported, item.Strategy)
		assert.Empty(t, item.Payload)
		assert.False(t, item.Failed)
		assert.Equal(t, before, r.exportCalls)
	})
}

func TestNameSetClaim(t *testing.T) {
	s := make(nameSet)
	assert.Equal(t, "Plan.md", s.claim("Plan.md"))
	assert.Equal(t, "Plan (2).md", s.claim("Plan.md"))
	assert.Equal(t, "Plan (3).md", s.claim("Plan.md"))
	assert.Equal(t, "README", s.claim("README"))
	assert.Equal(t, "README (2)", s.claim("README"))
	assert.Equal(t, ".env", s.claim(".env"))
	assert.Equal(t, ".env (2)", s.claim(".env"))
}
