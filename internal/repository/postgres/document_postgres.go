package postgres

import (
	"context"
	"database/sql"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// CreateTx inserts a new document row inside the caller's transaction and
// returns the stored record. An empty image ref is stored as NULL.
func (r *DocumentPostgres) CreateTx(ctx context.Context, tx *sql.Tx, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, file_name, content, image_ref, document_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING id, title, file_name, content, COALESCE(image_ref, ''), document_type, created_at, updated_at
	`
	row := tx.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.FileName,
		doc.Content,
		doc.ImageRef,
		doc.DocumentType,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.FileName,
		&out.Content,
		&out.ImageRef,
		&out.DocumentType,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// LinkEntitiesTx attaches entities to a document. Re-linking an already
// linked pair is a no-op rather than an error.
func (r *DocumentPostgres) LinkEntitiesTx(ctx context.Context, tx *sql.Tx, documentID string, entityIDs []string) error {
	const q = `
		INSERT INTO document_entities (document_id, entity_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, entityID := range entityIDs {
		if _, err := tx.ExecContext(ctx, q, documentID, entityID); err != nil {
			return err
		}
	}
	return nil
}

// FindByID fetches a single document by its ID together with its entities.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, title, file_name, content, COALESCE(image_ref, ''), document_type, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.FileName,
		&d.Content,
		&d.ImageRef,
		&d.DocumentType,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const qEntities = `
		SELECT e.id, e.name, e.entity_type, e.date_value, e.created_at, e.updated_at
		FROM entities e
		JOIN document_entities de ON de.entity_id = e.id
		WHERE de.document_id = $1
		ORDER BY e.name ASC, e.entity_type ASC
	`
	rows, err := r.db.QueryContext(ctx, qEntities, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e model.Entity
		var dateValue sql.NullTime
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.EntityType,
			&dateValue,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if dateValue.Valid {
			t := dateValue.Time
			e.DateValue = &t
		}
		d.Entities = append(d.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &d, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// Entities are not hydrated for listings.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	// Count total rows
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT id, title, file_name, content, COALESCE(image_ref, ''), document_type, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.FileName,
			&d.Content,
			&d.ImageRef,
			&d.DocumentType,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the mutable fields of a document row. The file name is
// the identity of the source scan and never changes.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET title = $2, content = $3, image_ref = NULLIF($4, ''), document_type = $5, updated_at = $6
		WHERE id = $1
		RETURNING id, title, file_name, content, COALESCE(image_ref, ''), document_type, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.ImageRef,
		doc.DocumentType,
		doc.UpdatedAt,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.FileName,
		&out.Content,
		&out.ImageRef,
		&out.DocumentType,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a document by ID. Link rows cascade at the schema level.
// It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Ignore rows affected to keep behavior simple per requirement (no business logic).
	_, _ = res.RowsAffected()
	return nil
}
