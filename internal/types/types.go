package types

import (
	"mime"
	"strings"
	"time"
)

// Config represents the complete configuration for Specular
type Config struct {
	Mirror MirrorConfig `json:"mirror"`
	Store  StoreConfig  `json:"store"`
	Seed   SeedConfig   `json:"seed"`
	API    APIConfig    `json:"api"`
	Log    LogConfig    `json:"log"`
}

// MirrorConfig is the run configuration of one mirror pass
type MirrorConfig struct {
	RootContainerID string `json:"root_container_id"`
	OutputRootPath  string `json:"output_root_path"`
	Query           string `json:"query,omitempty"`
	Recursive       bool   `json:"recursive"`
	Concurrency     int    `json:"concurrency"`

	// RemoteURL selects the HTTP remote; empty means the local store is mirrored in-process.
	RemoteURL string `json:"remote_url,omitempty"`
	AuthToken string `json:"auth_token,omitempty"`
}

// StoreConfig represents the document store configuration
type StoreConfig struct {
	DBPath   string `json:"db_path"`
	PageSize int    `json:"page_size"`
}

// SeedConfig represents the demo tree generation configuration
type SeedConfig struct {
	MaxDepth      int   `json:"max_depth"`
	MinContainers int   `json:"min_containers"`
	MaxContainers int   `json:"max_containers"`
	MinDocuments  int   `json:"min_documents"`
	MaxDocuments  int   `json:"max_documents"`
	Seed          int64 `json:"seed"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	// JWTSecret enables bearer token authentication on /api/v1 when set.
	JWTSecret string `json:"jwt_secret,omitempty"`
}

// LogConfig represents the logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path,omitempty"`
}

// TypeTag classifies a node in the remote store
type TypeTag string

// TypeTag constants
const (
	TypeContainer   TypeTag = "container"
	TypeDocument    TypeTag = "document"
	TypeSpreadsheet TypeTag = "spreadsheet"
	TypeFile        TypeTag = "file"
)

// Valid reports whether t is one of the known type tags
func (t TypeTag) Valid() bool {
	switch t {
	case TypeContainer, TypeDocument, TypeSpreadsheet, TypeFile:
		return true
	}
	return false
}

// MIME types the store assigns to its native node kinds
const (
	MimeContainer   = "application/vnd.specular.container"
	MimeDocument    = "application/vnd.specular.document"
	MimeSpreadsheet = "application/vnd.specular.spreadsheet"
	MimeJSON        = "application/json"
	MimeOctetStream = "application/octet-stream"
)

// RootID is the id of the store's root container
const RootID = "root"

// Node represents a remote node (container, document or file)
// ParentIDs[0] is the primary parent; the root has no parents.
type Node struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TypeTag      TypeTag   `json:"type_tag"`
	Extension    string    `json:"extension,omitempty"` // without the leading dot
	MimeType     string    `json:"mime_type"`
	ParentIDs    []string  `json:"parent_ids"`
	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
	Restricted   bool      `json:"restricted,omitempty"`
}

// IsContainer reports whether the node can hold children
func (n *Node) IsContainer() bool {
	return n.TypeTag == TypeContainer
}

// PrimaryParent returns the first parent id, or "" for parentless nodes
func (n *Node) PrimaryParent() string {
	if len(n.ParentIDs) == 0 {
		return ""
	}
	return n.ParentIDs[0]
}

// ListRequest asks for one page of the immediate children of a container
type ListRequest struct {
	ContainerID string `json:"container_id"`
	Query       string `json:"query,omitempty"`

	// IncludeContainers returns child containers even when they do not match Query.
	IncludeContainers bool `json:"include_containers,omitempty"`
	PageSize          int  `json:"page_size,omitempty"`
}

// ListResult represents one page of children
type ListResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Nodes   []Node `json:"nodes"`
	HasMore bool   `json:"has_more"`
}

// APIResponse represents a generic API response
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StoreStats summarizes the store contents per type tag
type StoreStats struct {
	Total  int             `json:"total"`
	ByType map[TypeTag]int `json:"by_type"`
}

// SplitExtension returns the lower-cased extension of name without the dot
func SplitExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// FileExtension returns the extension recorded for a node. Only plain files
// carry one; native documents and spreadsheets do not.
func FileExtension(tag TypeTag, name string) string {
	if tag != TypeFile {
		return ""
	}
	return SplitExtension(name)
}

// MimeTypeFor returns the MIME type the store assigns to a node
func MimeTypeFor(tag TypeTag, name string) string {
	switch tag {
	case TypeContainer:
		return MimeContainer
	case TypeDocument:
		return MimeDocument
	case TypeSpreadsheet:
		return MimeSpreadsheet
	}
	if ext := SplitExtension(name); ext != "" {
		if ext == "json" {
			return MimeJSON
		}
		if mt := mime.TypeByExtension("." + ext); mt != "" {
			return mt
		}
	}
	return MimeOctetStream
}
