package db

// Table layout of the document store.
// A node may have several parents; node_parents.position 0 is the primary parent.
const (
	createNodesTableSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id            VARCHAR PRIMARY KEY,
	name          VARCHAR NOT NULL,
	type_tag      VARCHAR NOT NULL,
	extension     VARCHAR NOT NULL DEFAULT '',
	mime_type     VARCHAR NOT NULL DEFAULT '',
	created_time  TIMESTAMP NOT NULL,
	modified_time TIMESTAMP NOT NULL,
	restricted    BOOLEAN NOT NULL DEFAULT FALSE,
	content       BLOB
)`

	createParentsTableSQL = `
CREATE TABLE IF NOT EXISTS node_parents (
	node_id   VARCHAR NOT NULL,
	parent_id VARCHAR NOT NULL,
	position  INTEGER NOT NULL,
	PRIMARY KEY (node_id, parent_id)
)`

	createParentIndexSQL = "CREATE INDEX IF NOT EXISTS idx_node_parents_parent ON node_parents(parent_id)"
	createTypeIndexSQL   = "CREATE INDEX IF NOT EXISTS idx_nodes_type_tag ON nodes(type_tag)"

	// nodeColumns is the projection shared by every node query, aliased as n
	nodeColumns = "n.id, n.name, n.type_tag, n.extension, n.mime_type, n.created_time, n.modified_time, n.restricted"
)

// schemaStatements returns the DDL in execution order
func schemaStatements() []string {
	return []string{createNodesTableSQL, createParentsTableSQL, createParentIndexSQL, createTypeIndexSQL}
}
