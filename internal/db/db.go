package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Project-Sylos/Specular/internal/types"
	_ "github.com/marcboeker/go-duckdb"
)

// ErrNodeNotFound is returned when no node has the requested id
var ErrNodeNotFound = errors.New("node not found")

// Record is a node together with its stored content
type Record struct {
	Node    types.Node
	Content []byte
}

// ChildQuery selects one page of the children of a container
type ChildQuery struct {
	ParentID string

	// Where is a predicate over the alias n; empty means TRUE.
	Where     string
	Args      []any
	KeepTypes []types.TypeTag // returned even when Where does not match
	Limit     int
}

// DB wraps the DuckDB connection and provides node CRUD operations
type DB struct {
	conn *sql.DB
	mu   sync.Mutex // Protects all database operations from concurrent access
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.InitializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := db.CreateRootNode(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// InitializeSchema creates the node tables and indexes if they do not exist
func (db *DB) InitializeSchema() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, stmt := range schemaStatements() {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateRootNode creates the root container.
// This function is idempotent - it will skip creating the node if it already exists
func (db *DB) CreateRootNode() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM nodes WHERE id = ?)", types.RootID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check root existence: %w", err)
	}
	if exists {
		return nil
	}

	now := time.Now().UTC()
	root := &Record{Node: types.Node{
		ID:           types.RootID,
		Name:         types.RootID,
		TypeTag:      types.TypeContainer,
		MimeType:     types.MimeContainer,
		CreatedTime:  now,
		ModifiedTime: now,
	}}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRecord(tx, root); err != nil {
		return fmt.Errorf("failed to create root node: %w", err)
	}
	return tx.Commit()
}

// InsertNode inserts a node, its parent links and content
func (db *DB) InsertNode(rec *Record) error {
	return db.BulkInsertNodes([]*Record{rec})
}

// BulkInsertNodes inserts multiple nodes in a single transaction
func (db *DB) BulkInsertNodes(recs []*Record) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(recs) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := insertRecord(tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRecord(tx *sql.Tx, rec *Record) error {
	n := rec.Node
	// a nil []byte binds as an empty BLOB; containers store NULL
	var content any
	if rec.Content != nil {
		content = rec.Content
	}
	_, err := tx.Exec(
		`INSERT INTO nodes (id, name, type_tag, extension, mime_type, created_time, modified_time, restricted, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Name, string(n.TypeTag), n.Extension, n.MimeType,
		n.CreatedTime.UTC(), n.ModifiedTime.UTC(), n.Restricted, content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
	}

	for i, parentID := range n.ParentIDs {
		if _, err := tx.Exec(
			"INSERT INTO node_parents (node_id, parent_id, position) VALUES (?, ?, ?)",
			n.ID, parentID, i,
		); err != nil {
			return fmt.Errorf("failed to link node %s to parent %s: %w", n.ID, parentID, err)
		}
	}
	return nil
}

// AddParent appends an additional (non-primary) parent to a node
func (db *DB) AddParent(nodeID, parentID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var next int
	err := db.conn.QueryRow(
		"SELECT COALESCE(MAX(position) + 1, 0) FROM node_parents WHERE node_id = ?", nodeID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read parents of %s: %w", nodeID, err)
	}

	if _, err := db.conn.Exec(
		"INSERT INTO node_parents (node_id, parent_id, position) VALUES (?, ?, ?)",
		nodeID, parentID, next,
	); err != nil {
		return fmt.Errorf("failed to link node %s to parent %s: %w", nodeID, parentID, err)
	}
	return nil
}

// SetRestricted marks a node as restricted or readable
func (db *DB) SetRestricted(id string, restricted bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec("UPDATE nodes SET restricted = ? WHERE id = ?", restricted, id)
	if err != nil {
		return fmt.Errorf("failed to update node %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return nil
}

// GetNodeByID retrieves a node by its ID
func (db *DB) GetNodeByID(id string) (*types.Node, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow("SELECT "+nodeColumns+" FROM nodes n WHERE n.id = ?", id)
	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get node %s: %w", id, err)
	}

	parents, err := db.loadParents([]string{id})
	if err != nil {
		return nil, err
	}
	node.ParentIDs = parents[id]
	return node, nil
}

// GetContent returns the stored content of a node, nil when there is none
func (db *DB) GetContent(id string) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var content []byte
	err := db.conn.QueryRow("SELECT content FROM nodes WHERE id = ?", id).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get content of %s: %w", id, err)
	}
	if len(content) == 0 {
		return nil, nil
	}
	return content, nil
}

// ListChildren returns up to q.Limit children of q.ParentID ordered by
// modification time (newest first), and whether more rows matched.
func (db *DB) ListChildren(q ChildQuery) ([]types.Node, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	where := q.Where
	if where == "" {
		where = "TRUE"
	}
	args := []any{q.ParentID}
	args = append(args, q.Args...)

	if len(q.KeepTypes) > 0 {
		ph := make([]string, len(q.KeepTypes))
		for i, t := range q.KeepTypes {
			ph[i] = "?"
			args = append(args, string(t))
		}
		where = fmt.Sprintf("(%s OR n.type_tag IN (%s))", where, strings.Join(ph, ", "))
	}

	query := `
SELECT ` + nodeColumns + `
FROM nodes n
JOIN node_parents p ON p.node_id = n.id
WHERE p.parent_id = ?
  AND ` + where + `
ORDER BY n.modified_time DESC, n.name, n.id`

	if q.Limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", q.Limit+1)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query children of %s: %w", q.ParentID, err)
	}
	defer rows.Close()

	var children []types.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan child node: %w", err)
		}
		children = append(children, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating children: %w", err)
	}

	hasMore := false
	if q.Limit > 0 && len(children) > q.Limit {
		children = children[:q.Limit]
		hasMore = true
	}

	ids := make([]string, len(children))
	for i := range children {
		ids[i] = children[i].ID
	}
	parents, err := db.loadParents(ids)
	if err != nil {
		return nil, false, err
	}
	for i := range children {
		children[i].ParentIDs = parents[children[i].ID]
	}

	return children, hasMore, nil
}

// loadParents returns the ordered parent ids of each node. Caller holds db.mu.
func (db *DB) loadParents(ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}

	rows, err := db.conn.Query(
		"SELECT node_id, parent_id FROM node_parents WHERE node_id IN ("+strings.Join(ph, ", ")+") ORDER BY node_id, position",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nodeID, parentID string
		if err := rows.Scan(&nodeID, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan parent link: %w", err)
		}
		out[nodeID] = append(out[nodeID], parentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parents: %w", err)
	}
	return out, nil
}

// DeleteNode deletes a node and its parent links.
// Children of the node keep their link to the missing id.
func (db *DB) DeleteNode(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM node_parents WHERE node_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete parent links of %s: %w", id, err)
	}

	result, err := tx.Exec("DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	return tx.Commit()
}

// DeleteAllNodes removes every node and parent link (for Reset)
func (db *DB) DeleteAllNodes() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("DELETE FROM node_parents"); err != nil {
		return fmt.Errorf("failed to delete from node_parents table: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM nodes"); err != nil {
		return fmt.Errorf("failed to delete from nodes table: %w", err)
	}
	return nil
}

// GetStats returns node counts per type tag
func (db *DB) GetStats() (*types.StoreStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query("SELECT type_tag, COUNT(*) FROM nodes GROUP BY type_tag")
	if err != nil {
		return nil, fmt.Errorf("failed to count nodes: %w", err)
	}
	defer rows.Close()

	stats := &types.StoreStats{ByType: make(map[types.TypeTag]int)}
	for rows.Next() {
		var tag string
		var count int
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		stats.ByType[types.TypeTag(tag)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(s scanner) (*types.Node, error) {
	node := &types.Node{}
	var tag string
	err := s.Scan(
		&node.ID,
		&node.Name,
		&tag,
		&node.Extension,
		&node.MimeType,
		&node.CreatedTime,
		&node.ModifiedTime,
		&node.Restricted,
	)
	if err != nil {
		return nil, err
	}
	node.TypeTag = types.TypeTag(tag)
	return node, nil
}
