package models

import (
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
)

// CreateContainerRequest represents the request to create a new container
type CreateContainerRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

// CreateDocumentRequest represents the request to create a document or file.
// Document is used for type_tag "document"; Data (base64) for every other type.
type CreateDocumentRequest struct {
	ParentID   string                `json:"parent_id"`
	Name       string                `json:"name"`
	TypeTag    types.TypeTag         `json:"type_tag"`
	Document   *store.NativeDocument `json:"document,omitempty"`
	Data       []byte                `json:"data,omitempty"`
	Restricted bool                  `json:"restricted,omitempty"`
}

// RestrictRequest sets or clears the restricted flag of a node
type RestrictRequest struct {
	Restricted bool `json:"restricted"`
}

// AddParentRequest links a node under an additional container
type AddParentRequest struct {
	ParentID string `json:"parent_id"`
}

// SeedResponse reports how many nodes a seed created
type SeedResponse struct {
	Created int `json:"created"`
}
