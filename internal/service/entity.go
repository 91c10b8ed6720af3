package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
)

// EntityListResult is the service-level DTO for paginated entities.
type EntityListResult struct {
	Items []model.Entity `json:"data"`
	Total int            `json:"total"`
}

// EntityService exposes read and maintenance operations on entities.
// Creation happens only through document saves.
type EntityService interface {
	// List returns entities, optionally filtered by type and name substring.
	List(ctx context.Context, entityType model.EntityType, name string, limit, offset int) (*EntityListResult, error)

	// Get returns an entity by ID with its linked documents attached.
	Get(ctx context.Context, id string) (*model.Entity, error)

	// CleanupOrphans removes entities no document links to and returns the
	// removed count. An explicit maintenance operation, never the hot path.
	CleanupOrphans(ctx context.Context) (int64, error)
}

type entityService struct {
	entities repository.EntityRepository
}

// NewEntityService constructs a new EntityService.
func NewEntityService(entities repository.EntityRepository) EntityService {
	return &entityService{entities: entities}
}

func (s *entityService) List(ctx context.Context, entityType model.EntityType, name string, limit, offset int) (*EntityListResult, error) {
	if entityType != "" && !entityType.Valid() {
		return nil, &model.ValidationError{
			Violations: []string{fmt.Sprintf("type %q is not a known entity type", entityType)},
		}
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.entities.List(ctx, repository.EntityQuery{
		PageQuery: repository.PageQuery{Limit: limit, Offset: offset},
		Type:      entityType,
		Name:      name,
	})
	if err != nil {
		return nil, err
	}
	return &EntityListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *entityService) Get(ctx context.Context, id string) (*model.Entity, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	e, err := s.entities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}

	docs, err := s.entities.DocumentsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Documents = docs
	return e, nil
}

func (s *entityService) CleanupOrphans(ctx context.Context) (int64, error) {
	removed, err := s.entities.DeleteOrphans(ctx)
	if err != nil {
		return 0, &model.PersistenceError{Op: "delete orphan entities", Err: err}
	}
	return removed, nil
}
