package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"archivedoc/internal/database"
	"archivedoc/internal/model"
	"archivedoc/internal/repository"
	"archivedoc/internal/storage"
)

// Payload length bounds, shared by save and patch validation.
const (
	maxTitleLen      = 500
	maxFileNameLen   = 255
	maxContentLen    = 200000
	maxEntityNameLen = 255
	maxEntities      = 50
)

const presignExpiry = 15 * time.Minute

// SaveEntityInput is one proposed entity of a save payload.
type SaveEntityInput struct {
	Name string           `json:"name"`
	Type model.EntityType `json:"type"`
}

// SaveDocumentPayload is a validated-on-entry candidate document,
// typically assembled from an AnalysisResult.
type SaveDocumentPayload struct {
	Title        string             `json:"title"`
	FileName     string             `json:"file_name"`
	Content      string             `json:"content"`
	DocumentType model.DocumentType `json:"document_type"`
	ImageRef     string             `json:"image_ref,omitempty"`
	Entities     []SaveEntityInput  `json:"entities"`
}

// DocumentPatch carries a direct field patch; nil fields stay untouched.
type DocumentPatch struct {
	Title        *string             `json:"title,omitempty"`
	Content      *string             `json:"content,omitempty"`
	ImageRef     *string             `json:"image_ref,omitempty"`
	DocumentType *model.DocumentType `json:"document_type,omitempty"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for persisted documents. Save is the
// persistence coordinator: it resolves entities and writes the document with
// its links inside one transaction.
type DocumentService interface {
	// Save validates the payload, then atomically resolves its entities and
	// inserts the document row with entity links. Returns the hydrated document.
	Save(ctx context.Context, p SaveDocumentPayload) (*model.Document, error)

	// Get returns a single document by its ID, entities attached.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Update applies a direct field patch and returns the stored record.
	Update(ctx context.Context, id string, patch DocumentPatch) (*model.Document, error)

	// Delete removes a document; entity links cascade, entities stay.
	Delete(ctx context.Context, id string) error

	// ImageURL returns a presigned download URL for the document's image.
	ImageURL(ctx context.Context, id string) (string, error)
}

type documentService struct {
	db       *sql.DB
	docs     repository.DocumentRepository
	resolver EntityResolver
	store    storage.FileStore
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(db *sql.DB, docs repository.DocumentRepository, resolver EntityResolver, store storage.FileStore) DocumentService {
	return &documentService{db: db, docs: docs, resolver: resolver, store: store}
}

func (s *documentService) Save(ctx context.Context, p SaveDocumentPayload) (*model.Document, error) {
	if verr := validateSavePayload(p); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	var saved *model.Document

	err := database.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		// Sequential resolution keeps the single-insert-per-key guarantee;
		// repeated keys within the payload collapse to the first occurrence.
		resolved := make([]model.Entity, 0, len(p.Entities))
		seen := make(map[string]bool, len(p.Entities))
		for _, in := range p.Entities {
			key := strings.ToLower(strings.TrimSpace(in.Name)) + "\x00" + string(in.Type)
			if seen[key] {
				continue
			}
			seen[key] = true

			e, err := s.resolver.Resolve(ctx, tx, in.Name, in.Type)
			if err != nil {
				return err
			}
			resolved = append(resolved, *e)
		}

		doc := &model.Document{
			ID:           uuid.NewString(),
			Title:        p.Title,
			FileName:     p.FileName,
			Content:      p.Content,
			DocumentType: p.DocumentType,
			ImageRef:     p.ImageRef,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		stored, err := s.docs.CreateTx(ctx, tx, doc)
		if err != nil {
			return &model.PersistenceError{Op: "create document", Err: err}
		}

		ids := make([]string, len(resolved))
		for i, e := range resolved {
			ids[i] = e.ID
		}
		if err := s.docs.LinkEntitiesTx(ctx, tx, stored.ID, ids); err != nil {
			return &model.PersistenceError{Op: "link entities", Err: err}
		}

		stored.Entities = resolved
		saved = stored
		return nil
	})
	if err != nil {
		var pe *model.PersistenceError
		if errors.As(err, &pe) {
			return nil, err
		}
		// Begin/commit failures arrive raw from the tx helper.
		return nil, &model.PersistenceError{Op: "save document", Err: err}
	}
	return saved, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.docs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch DocumentPatch) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.ImageRef != nil {
		doc.ImageRef = *patch.ImageRef
	}
	if patch.DocumentType != nil {
		doc.DocumentType = *patch.DocumentType
	}
	if verr := validatePatchedDocument(doc); verr != nil {
		return nil, verr
	}
	doc.UpdatedAt = time.Now().UTC()

	entities := doc.Entities
	updated, err := s.docs.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
		}
		return nil, &model.PersistenceError{Op: "update document", Err: err}
	}
	updated.Entities = entities
	return updated, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return &model.PersistenceError{Op: "delete document", Err: err}
	}

	// Derived renditions are ours to clean up; source scans are not.
	// Best effort only, the document row is already gone.
	if strings.HasPrefix(doc.ImageRef, "derived/") {
		if err := s.store.Delete(ctx, doc.ImageRef); err != nil {
			log.Printf("documents: delete derived image %s: %v", doc.ImageRef, err)
		}
	}
	return nil
}

func (s *documentService) ImageURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.ImageRef == "" {
		return "", fmt.Errorf("document %s has no image: %w", id, model.ErrNotFound)
	}
	url, err := s.store.PresignGet(ctx, doc.ImageRef, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign image %s: %w", doc.ImageRef, err)
	}
	return url, nil
}

// validateSavePayload collects every violation rather than stopping at the
// first, so a caller can fix its payload in one round trip.
func validateSavePayload(p SaveDocumentPayload) *model.ValidationError {
	var v []string

	v = appendLengthViolations(v, "title", p.Title, maxTitleLen)
	v = appendLengthViolations(v, "file_name", p.FileName, maxFileNameLen)
	v = appendLengthViolations(v, "content", p.Content, maxContentLen)

	if !p.DocumentType.Valid() {
		v = append(v, fmt.Sprintf("document_type %q is not a known type", p.DocumentType))
	}
	if p.DocumentType == model.DocTypePhoto && p.ImageRef == "" {
		v = append(v, "image_ref is required when document_type is photo")
	}

	if n := len(p.Entities); n < 1 || n > maxEntities {
		v = append(v, fmt.Sprintf("entities must contain between 1 and %d items, got %d", maxEntities, n))
	}
	for i, e := range p.Entities {
		if strings.TrimSpace(e.Name) == "" {
			v = append(v, fmt.Sprintf("entities[%d].name is required", i))
		} else if len(e.Name) > maxEntityNameLen {
			v = append(v, fmt.Sprintf("entities[%d].name exceeds %d characters", i, maxEntityNameLen))
		}
		if !e.Type.Valid() {
			v = append(v, fmt.Sprintf("entities[%d].type %q is not a known type", i, e.Type))
		}
	}

	if len(v) > 0 {
		return &model.ValidationError{Violations: v}
	}
	return nil
}

// validatePatchedDocument re-checks the invariants a patch can break.
func validatePatchedDocument(doc *model.Document) *model.ValidationError {
	var v []string

	v = appendLengthViolations(v, "title", doc.Title, maxTitleLen)
	v = appendLengthViolations(v, "content", doc.Content, maxContentLen)

	if !doc.DocumentType.Valid() {
		v = append(v, fmt.Sprintf("document_type %q is not a known type", doc.DocumentType))
	}
	if doc.DocumentType == model.DocTypePhoto && doc.ImageRef == "" {
		v = append(v, "image_ref is required when document_type is photo")
	}

	if len(v) > 0 {
		return &model.ValidationError{Violations: v}
	}
	return nil
}

func appendLengthViolations(v []string, field, value string, max int) []string {
	if strings.TrimSpace(value) == "" {
		return append(v, field+" is required")
	}
	if len(value) > max {
		return append(v, fmt.Sprintf("%s exceeds %d characters", field, max))
	}
	return v
}
