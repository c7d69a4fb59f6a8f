package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Project-Sylos/Specular/internal/db"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/google/uuid"
)

// RNG wraps math/rand.Rand for seeded random generation
type RNG struct {
	*rand.Rand
}

// NewRNG creates a new seeded random number generator
func NewRNG(seed int64) *RNG {
	return &RNG{
		Rand: rand.New(rand.NewSource(seed)),
	}
}

// baseTime anchors generated timestamps so a seed always yields the same tree
var baseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Kind of a generated non-container node
type kind int

const (
	kindDocument kind = iota
	kindJSON
	kindSpreadsheet
	kindImage
)

var containerNames = []string{"Projects", "Archive", "Reports", "Design", "Meetings", "Research", "Finance", "Shared"}
var documentNames = []string{"Plan", "Notes", "Roadmap", "Retrospective", "Proposal", "Summary", "Minutes", "Draft"}

type treeGen struct {
	rng   *RNG
	cfg   *types.SeedConfig
	recs  []*db.Record
	clock time.Duration
}

// GenerateTree generates a deterministic tree of containers and documents
// below parentID. Records are returned parents first, ready for bulk insert.
func GenerateTree(parentID string, rng *RNG, cfg *types.SeedConfig) ([]*db.Record, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	g := &treeGen{rng: rng, cfg: cfg}
	if err := g.children(parentID, 0); err != nil {
		return nil, err
	}
	return g.recs, nil
}

func (g *treeGen) children(parentID string, depth int) error {
	// Don't generate children if we've reached max depth
	if depth >= g.cfg.MaxDepth {
		return nil
	}

	containerCount := g.rng.Intn(g.cfg.MaxContainers-g.cfg.MinContainers+1) + g.cfg.MinContainers
	var containers []string
	for i := 0; i < containerCount; i++ {
		name := fmt.Sprintf("%s %d", containerNames[g.rng.Intn(len(containerNames))], i+1)
		rec, err := g.node(parentID, name, types.TypeContainer, nil)
		if err != nil {
			return fmt.Errorf("failed to generate container %d: %w", i+1, err)
		}
		containers = append(containers, rec.Node.ID)
	}

	docCount := g.rng.Intn(g.cfg.MaxDocuments-g.cfg.MinDocuments+1) + g.cfg.MinDocuments
	for i := 0; i < docCount; i++ {
		if err := g.document(parentID, i+1); err != nil {
			return fmt.Errorf("failed to generate document %d: %w", i+1, err)
		}
	}

	for _, id := range containers {
		if err := g.children(id, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (g *treeGen) document(parentID string, index int) error {
	var (
		name    string
		tag     types.TypeTag
		content []byte
		err     error
	)

	switch kind(g.rng.Intn(4)) {
	case kindDocument:
		name = documentNames[g.rng.Intn(len(documentNames))]
		tag = types.TypeDocument
		content, err = GenerateDocumentContent(name, g.rng)
	case kindJSON:
		name = fmt.Sprintf("config_%d.json", index)
		tag = types.TypeFile
		content, err = GenerateJSONContent(name, g.rng)
	case kindSpreadsheet:
		name = fmt.Sprintf("Budget %d", index)
		tag = types.TypeSpreadsheet
	default:
		name = fmt.Sprintf("photo_%d.png", index)
		tag = types.TypeFile
		content = GenerateFileData(g.rng, 256)
	}
	if err != nil {
		return err
	}

	_, err = g.node(parentID, name, tag, content)
	return err
}

// node creates a record with a uuid drawn from the seeded RNG
func (g *treeGen) node(parentID, name string, tag types.TypeTag, content []byte) (*db.Record, error) {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate node id: %w", err)
	}

	g.clock += time.Duration(g.rng.Intn(3600)+1) * time.Second
	ts := baseTime.Add(g.clock)

	rec := &db.Record{
		Node: types.Node{
			ID:           id.String(),
			Name:         name,
			TypeTag:      tag,
			Extension:    types.FileExtension(tag, name),
			MimeType:     types.MimeTypeFor(tag, name),
			ParentIDs:    []string{parentID},
			CreatedTime:  ts,
			ModifiedTime: ts,
		},
		Content: content,
	}
	g.recs = append(g.recs, rec)
	return rec, nil
}

// ValidateConfig validates the generator configuration
func ValidateConfig(cfg *types.SeedConfig) error {
	if cfg.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1")
	}
	if cfg.MinContainers < 0 || cfg.MaxContainers < cfg.MinContainers {
		return fmt.Errorf("invalid container count range: min=%d, max=%d", cfg.MinContainers, cfg.MaxContainers)
	}
	if cfg.MinDocuments < 0 || cfg.MaxDocuments < cfg.MinDocuments {
		return fmt.Errorf("invalid document count range: min=%d, max=%d", cfg.MinDocuments, cfg.MaxDocuments)
	}
	return nil
}
