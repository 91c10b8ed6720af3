package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
)

// EntityPostgres is a PostgreSQL implementation of repository.EntityRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type EntityPostgres struct {
	db *sql.DB
}

// NewEntityPostgres creates a new EntityPostgres repository.
func NewEntityPostgres(db *sql.DB) *EntityPostgres {
	return &EntityPostgres{db: db}
}

var _ repository.EntityRepository = (*EntityPostgres)(nil)

// FindByNameTypeTx looks an entity up by its case-insensitive natural key
// within the caller's transaction, so rows inserted earlier in the same
// transaction are visible.
func (r *EntityPostgres) FindByNameTypeTx(ctx context.Context, tx *sql.Tx, name string, entityType model.EntityType) (*model.Entity, error) {
	const q = `
		SELECT id, name, entity_type, date_value, created_at, updated_at
		FROM entities
		WHERE LOWER(name) = LOWER($1) AND entity_type = $2
	`
	return scanEntity(tx.QueryRowContext(ctx, q, name, entityType))
}

// CreateTx inserts a new entity row. The insert uses ON CONFLICT DO NOTHING
// against the (LOWER(name), entity_type) unique index: losing a race to a
// concurrent writer surfaces as ErrDuplicateEntity instead of an aborted
// transaction, so the caller can retry its lookup.
func (r *EntityPostgres) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Entity) (*model.Entity, error) {
	const q = `
		INSERT INTO entities (id, name, entity_type, date_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (LOWER(name), entity_type) DO NOTHING
		RETURNING id, name, entity_type, date_value, created_at, updated_at
	`
	out, err := scanEntity(tx.QueryRowContext(ctx, q,
		e.ID,
		e.Name,
		e.EntityType,
		e.DateValue,
		e.CreatedAt,
		e.UpdatedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrDuplicateEntity
	}
	return out, err
}

// FindByID fetches a single entity by its ID.
func (r *EntityPostgres) FindByID(ctx context.Context, id string) (*model.Entity, error) {
	const q = `
		SELECT id, name, entity_type, date_value, created_at, updated_at
		FROM entities
		WHERE id = $1
	`
	return scanEntity(r.db.QueryRowContext(ctx, q, id))
}

// List returns entities using LIMIT/OFFSET pagination with optional type and
// name filters, plus a total count for the same filter.
func (r *EntityPostgres) List(ctx context.Context, q repository.EntityQuery) (*repository.PageResult[model.Entity], error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if q.Type != "" {
		args = append(args, q.Type)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if q.Name != "" {
		args = append(args, "%"+q.Name+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities"+cond, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, q.Limit, q.Offset)
	qList := fmt.Sprintf(`
		SELECT id, name, entity_type, date_value, created_at, updated_at
		FROM entities%s
		ORDER BY name ASC, entity_type ASC
		LIMIT $%d OFFSET $%d
	`, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Entity, 0)
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
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Entity]{
		Items: items,
		Total: total,
	}, nil
}

// DocumentsFor returns the documents linked to an entity, newest first.
func (r *EntityPostgres) DocumentsFor(ctx context.Context, entityID string) ([]model.Document, error) {
	const q = `
		SELECT d.id, d.title, d.file_name, d.content, COALESCE(d.image_ref, ''), d.document_type, d.created_at, d.updated_at
		FROM documents d
		JOIN document_entities de ON de.document_id = d.id
		WHERE de.entity_id = $1
		ORDER BY d.created_at DESC, d.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
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
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteOrphans removes entities that no document links to anymore.
func (r *EntityPostgres) DeleteOrphans(ctx context.Context) (int64, error) {
	const q = `
		DELETE FROM entities e
		WHERE NOT EXISTS (
			SELECT 1 FROM document_entities de WHERE de.entity_id = e.id
		)
	`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEntity(row *sql.Row) (*model.Entity, error) {
	var e model.Entity
	var dateValue sql.NullTime
	if err := row.Scan(
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
	return &e, nil
}
