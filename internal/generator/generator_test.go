package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/Project-Sylos/Specular/internal/types"
)

func testSeedConfig() *types.SeedConfig {
	return &types.SeedConfig{
		MaxDepth:      3,
		MinContainers: 1,
		MaxContainers: 3,
		MinDocuments:  2,
		MaxDocuments:  4,
		Seed:          42,
	}
}

// TestRNG tests the random number generator functionality
func TestRNG(t *testing.T) {
	// Test with same seed produces same sequence
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 100; i++ {
		val1 := rng1.Intn(1000)
		val2 := rng2.Intn(1000)
		if val1 != val2 {
			t.Errorf("Same seed should produce same sequence. Iteration %d: got %d and %d", i, val1, val2)
		}
	}
}

// TestGenerateTree tests tree generation and its determinism
func TestGenerateTree(t *testing.T) {
	cfg := testSeedConfig()

	recs, err := GenerateTree(types.RootID, NewRNG(cfg.Seed), cfg)
	if err != nil {
		t.Fatalf("Unexpected error generating tree: %v", err)
	}
	if len(recs) == 0 {
		t.Fatalf("Expected generated records")
	}

	seen := map[string]bool{types.RootID: true}
	hasContainers := false
	hasDocuments := false
	for _, rec := range recs {
		n := rec.Node
		if !seen[n.PrimaryParent()] {
			t.Errorf("Node %s (%s) appears before its parent %s", n.ID, n.Name, n.PrimaryParent())
		}
		seen[n.ID] = true

		switch n.TypeTag {
		case types.TypeContainer:
			hasContainers = true
			if rec.Content != nil {
				t.Errorf("Expected container %s without content", n.Name)
			}
		case types.TypeDocument:
			hasDocuments = true
			var doc document
			if err := json.Unmarshal(rec.Content, &doc); err != nil {
				t.Errorf("Document %s has invalid content: %v", n.Name, err)
			}
			if doc.Title != n.Name {
				t.Errorf("Expected document title %s, got %s", n.Name, doc.Title)
			}
		}
		if n.MimeType == "" {
			t.Errorf("Expected mime type for %s", n.Name)
		}
	}
	if !hasContainers {
		t.Errorf("Expected at least one container in generated tree")
	}
	if !hasDocuments {
		t.Errorf("Expected at least one document in generated tree")
	}

	// Same seed, same tree
	recs2, err := GenerateTree(types.RootID, NewRNG(cfg.Seed), cfg)
	if err != nil {
		t.Fatalf("Unexpected error generating tree (second time): %v", err)
	}
	if len(recs) != len(recs2) {
		t.Fatalf("Expected same number of records with same seed, got %d and %d", len(recs), len(recs2))
	}
	for i := range recs {
		a, b := recs[i].Node, recs2[i].Node
		if a.ID != b.ID || a.Name != b.Name || a.TypeTag != b.TypeTag || !a.ModifiedTime.Equal(b.ModifiedTime) {
			t.Errorf("Records at index %d differ: %+v vs %+v", i, a, b)
		}
	}
}

// TestGenerateTreeDepth tests that MaxDepth bounds container nesting
func TestGenerateTreeDepth(t *testing.T) {
	cfg := testSeedConfig()
	cfg.MaxDepth = 1

	recs, err := GenerateTree(types.RootID, NewRNG(7), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, rec := range recs {
		if rec.Node.PrimaryParent() != types.RootID {
			t.Errorf("Expected all nodes directly under root at depth 1, got parent %s", rec.Node.PrimaryParent())
		}
	}
}

// TestValidateConfig tests generator configuration validation
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*types.SeedConfig)
		wantErr bool
	}{
		{name: "valid", modify: func(*types.SeedConfig) {}},
		{name: "zero depth", modify: func(c *types.SeedConfig) { c.MaxDepth = 0 }, wantErr: true},
		{name: "inverted containers", modify: func(c *types.SeedConfig) { c.MinContainers = 4 }, wantErr: true},
		{name: "negative documents", modify: func(c *types.SeedConfig) { c.MinDocuments = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSeedConfig()
			tt.modify(cfg)
			err := ValidateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestComputeChecksum tests the SHA256 checksum generation
func TestComputeChecksum(t *testing.T) {
	data := []byte("hello world")
	hash := sha256.Sum256(data)
	expected := hex.EncodeToString(hash[:])

	if got := ComputeChecksum(data); got != expected {
		t.Errorf("ComputeChecksum() = %s, want %s", got, expected)
	}
}

// TestGenerateJSONContent tests that generated JSON files are valid and deterministic
func TestGenerateJSONContent(t *testing.T) {
	a, err := GenerateJSONContent("config_1.json", NewRNG(3))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := GenerateJSONContent("config_1.json", NewRNG(3))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("Expected deterministic content, got %s and %s", a, b)
	}
	if !json.Valid(a) {
		t.Errorf("Expected valid JSON, got %s", a)
	}
}
