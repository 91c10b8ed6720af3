package repository

import (
	"context"
	"database/sql"

	"archivedoc/internal/model"
)

// EntityQuery filters entity listings.
type EntityQuery struct {
	PageQuery
	Type model.EntityType // optional; empty matches all types
	Name string           // optional; case-insensitive substring match
}

// EntityRepository defines data access for entities and their document links.
type EntityRepository interface {
	// FindByNameTypeTx looks an entity up by its case-insensitive natural key
	// within the caller's transaction. Absent keys report sql.ErrNoRows.
	FindByNameTypeTx(ctx context.Context, tx *sql.Tx, name string, entityType model.EntityType) (*model.Entity, error)

	// CreateTx inserts a new entity within the caller's transaction. When a
	// concurrent writer already holds the natural key it returns
	// ErrDuplicateEntity without aborting the transaction.
	CreateTx(ctx context.Context, tx *sql.Tx, e *model.Entity) (*model.Entity, error)

	// FindByID returns an entity by its ID.
	FindByID(ctx context.Context, id string) (*model.Entity, error)

	// List returns a paginated, filtered list of entities and the total rows count.
	List(ctx context.Context, q EntityQuery) (*PageResult[model.Entity], error)

	// DocumentsFor returns the documents linked to an entity, newest first.
	DocumentsFor(ctx context.Context, entityID string) ([]model.Document, error)

	// DeleteOrphans removes entities linked to no document and returns how
	// many were removed.
	DeleteOrphans(ctx context.Context) (int64, error)
}
