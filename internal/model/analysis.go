package model

import "time"

// ExtractedEntity is an entity proposal produced by the classifier, before
// it has been resolved against the entity store.
type ExtractedEntity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// AnalysisResult is the outcome of analyzing a single stored file. Results
// live in the in-memory cache only and never become rows; saving one
// produces a Document.
type AnalysisResult struct {
	FileID       string            `json:"file_id"`
	FileName     string            `json:"file_name"`
	ImageRef     string            `json:"image_ref,omitempty"`
	DocumentType DocumentType      `json:"document_type"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Entities     []ExtractedEntity `json:"entities"`
	ProcessedAt  time.Time         `json:"processed_at"`
	Document     *Document         `json:"document,omitempty"`
}
