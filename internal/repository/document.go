package repository

import (
	"context"
	"database/sql"

	"archivedoc/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// CreateTx inserts a new document row within the caller's transaction.
	// Returns the stored document (may include values set by the DB).
	CreateTx(ctx context.Context, tx *sql.Tx, doc *model.Document) (*model.Document, error)

	// LinkEntitiesTx attaches entities to a document within the caller's
	// transaction. Existing links are left untouched.
	LinkEntitiesTx(ctx context.Context, tx *sql.Tx, documentID string, entityIDs []string) error

	// FindByID returns a document by its ID with its entities attached.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents (without entities) and the
	// total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Update overwrites the mutable fields of a document row and returns the
	// stored record.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
