package model

import "time"

// Document is the persisted record produced by analyzing a stored file.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	FileName     string       `json:"file_name"`
	Content      string       `json:"content"`
	DocumentType DocumentType `json:"document_type"`
	ImageRef     string       `json:"image_ref,omitempty"`
	Entities     []Entity     `json:"entities,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
