package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Project-Sylos/Specular/internal/db"
	"github.com/Project-Sylos/Specular/internal/generator"
	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown node ids
	ErrNotFound = errors.New("node not found")
	// ErrPermissionDenied is returned for restricted nodes
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotExportable is returned when a node has no markup representation
	ErrNotExportable = errors.New("node cannot be exported as markup")
	// ErrNotContainer is returned when a container was expected
	ErrNotContainer = errors.New("node is not a container")
)

// CreateDocumentRequest describes a new non-container node
type CreateDocumentRequest struct {
	ParentID   string        `json:"parent_id"`
	Name       string        `json:"name"`
	TypeTag    types.TypeTag `json:"type_tag"`
	Content    []byte        `json:"content"`
	Restricted bool          `json:"restricted,omitempty"`
}

// Store is the DuckDB-backed remote document store.
// It serves listings and exports to the mirror engine in-process and behind the HTTP API.
type Store struct {
	db       *db.DB
	cfg      *types.Config
	pageSize int
}

// New opens the store described by cfg
func New(cfg *types.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	database, err := db.New(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pageSize := cfg.Store.PageSize
	if pageSize < 1 {
		pageSize = 1000
	}

	return &Store{
		db:       database,
		cfg:      cfg,
		pageSize: pageSize,
	}, nil
}

// List returns one page of the immediate children of a container.
// The query is evaluated by the database; containers are kept regardless of
// the query when IncludeContainers is set.
func (s *Store) List(ctx context.Context, req types.ListRequest) (*types.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parent, err := s.GetNode(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}
	if !parent.IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, req.ContainerID)
	}
	if parent.Restricted {
		return nil, fmt.Errorf("%w: cannot list %s", ErrPermissionDenied, req.ContainerID)
	}

	filter, err := query.Parse(req.Query)
	if err != nil {
		return nil, err
	}
	where, args := filter.SQL("n")

	limit := req.PageSize
	if limit < 1 || limit > s.pageSize {
		limit = s.pageSize
	}

	q := db.ChildQuery{
		ParentID: req.ContainerID,
		Where:    where,
		Args:     args,
		Limit:    limit,
	}
	if req.IncludeContainers {
		q.KeepTypes = []types.TypeTag{types.TypeContainer}
	}

	children, hasMore, err := s.db.ListChildren(q)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve children: %w", err)
	}
	if children == nil {
		children = []types.Node{}
	}

	return &types.ListResult{
		Success: true,
		Message: "Children retrieved successfully",
		Nodes:   children,
		HasMore: hasMore,
	}, nil
}

// GetNode retrieves a node by ID
func (s *Store) GetNode(ctx context.Context, id string) (*types.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	node, err := s.db.GetNodeByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return node, nil
}

// ExportAsMarkup renders a native document as Markdown
func (s *Store) ExportAsMarkup(ctx context.Context, id string) (string, error) {
	node, err := s.readable(ctx, id)
	if err != nil {
		return "", err
	}
	if node.TypeTag != types.TypeDocument {
		return "", fmt.Errorf("%w: %s is a %s", ErrNotExportable, id, node.TypeTag)
	}

	content, err := s.db.GetContent(id)
	if err != nil {
		return "", fmt.Errorf("failed to get document content: %w", err)
	}
	doc, err := ParseNativeDocument(content)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(doc), nil
}

// FetchRaw returns the stored bytes of a non-container node
func (s *Store) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	node, err := s.readable(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.IsContainer() {
		return nil, fmt.Errorf("node %s is a container", id)
	}

	content, err := s.db.GetContent(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get file content: %w", err)
	}
	return content, nil
}

func (s *Store) readable(ctx context.Context, id string) (*types.Node, error) {
	node, err := s.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.Restricted {
		return nil, fmt.Errorf("%w: cannot read %s", ErrPermissionDenied, id)
	}
	return node, nil
}

// CreateContainer creates a new container under parentID
func (s *Store) CreateContainer(ctx context.Context, parentID, name string) (*types.Node, error) {
	if err := s.checkParent(ctx, parentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("container name is required")
	}

	now := time.Now().UTC()
	node := types.Node{
		ID:           uuid.New().String(),
		Name:         name,
		TypeTag:      types.TypeContainer,
		MimeType:     types.MimeContainer,
		ParentIDs:    []string{parentID},
		CreatedTime:  now,
		ModifiedTime: now,
	}

	if err := s.db.InsertNode(&db.Record{Node: node}); err != nil {
		return nil, fmt.Errorf("failed to insert container node: %w", err)
	}
	return &node, nil
}

// CreateDocument creates a document, spreadsheet or plain file under req.ParentID.
// Document content must be a valid native document.
func (s *Store) CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*types.Node, error) {
	if err := s.checkParent(ctx, req.ParentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("document name is required")
	}

	tag := req.TypeTag
	if tag == "" {
		tag = types.TypeFile
	}
	if !tag.Valid() || tag == types.TypeContainer {
		return nil, fmt.Errorf("invalid document type %q", tag)
	}
	if tag == types.TypeDocument {
		if _, err := ParseNativeDocument(req.Content); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	node := types.Node{
		ID:           uuid.New().String(),
		Name:         req.Name,
		TypeTag:      tag,
		Extension:    types.FileExtension(tag, req.Name),
		MimeType:     types.MimeTypeFor(tag, req.Name),
		ParentIDs:    []string{req.ParentID},
		CreatedTime:  now,
		ModifiedTime: now,
		Restricted:   req.Restricted,
	}

	if err := s.db.InsertNode(&db.Record{Node: node, Content: req.Content}); err != nil {
		return nil, fmt.Errorf("failed to insert document node: %w", err)
	}
	return &node, nil
}

// AddParent links an existing node under an additional container
func (s *Store) AddParent(ctx context.Context, nodeID, parentID string) error {
	if _, err := s.GetNode(ctx, nodeID); err != nil {
		return err
	}
	if err := s.checkParent(ctx, parentID); err != nil {
		return err
	}
	return s.db.AddParent(nodeID, parentID)
}

// SetRestricted denies or allows listing and export of a node
func (s *Store) SetRestricted(ctx context.Context, id string, restricted bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.SetRestricted(id, restricted); err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *Store) checkParent(ctx context.Context, parentID string) error {
	parent, err := s.GetNode(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to get parent node: %w", err)
	}
	if !parent.IsContainer() {
		return fmt.Errorf("%w: %s", ErrNotContainer, parentID)
	}
	return nil
}

// Seed populates the store with a deterministic demo tree under the root
// and returns the number of nodes created
func (s *Store) Seed(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rng := generator.NewRNG(s.cfg.Seed.Seed)
	recs, err := generator.GenerateTree(types.RootID, rng, &s.cfg.Seed)
	if err != nil {
		return 0, fmt.Errorf("failed to generate tree: %w", err)
	}
	if err := s.db.BulkInsertNodes(recs); err != nil {
		return 0, fmt.Errorf("failed to insert generated nodes: %w", err)
	}
	return len(recs), nil
}

// DeleteNode deletes a node by its ID
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	if id == types.RootID {
		return fmt.Errorf("cannot delete root node")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DeleteNode(id); err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// Reset clears all nodes and recreates the root
func (s *Store) Reset() error {
	if err := s.db.DeleteAllNodes(); err != nil {
		return fmt.Errorf("failed to delete all nodes: %w", err)
	}
	if err := s.db.CreateRootNode(); err != nil {
		return fmt.Errorf("failed to recreate root node: %w", err)
	}
	return nil
}

// Stats returns node counts per type tag
func (s *Store) Stats() (*types.StoreStats, error) {
	return s.db.GetStats()
}

// Config returns the current configuration
func (s *Store) Config() *types.Config {
	return s.cfg
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
