package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
)

// EntityResolver finds or lazily creates entities by their case-insensitive
// (name, type) natural key. Resolution runs inside the caller's transaction,
// so repeated resolves of the same key within one save see each other's
// inserts. Callers must resolve sequentially, not concurrently, within a
// single transaction.
type EntityResolver interface {
	Resolve(ctx context.Context, tx *sql.Tx, name string, entityType model.EntityType) (*model.Entity, error)
}

type entityResolver struct {
	entities repository.EntityRepository
}

// NewEntityResolver constructs an EntityResolver backed by the given repository.
func NewEntityResolver(entities repository.EntityRepository) EntityResolver {
	return &entityResolver{entities: entities}
}

// dateLayouts are the accepted spellings of a date entity's name, tried in
// order. Names that match none of them still resolve; they just carry no
// normalized date value.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
	"January 2006",
	"2006",
}

func (r *entityResolver) Resolve(ctx context.Context, tx *sql.Tx, name string, entityType model.EntityType) (*model.Entity, error) {
	// Trimmed once here; the stored name, both lookups and the unique index
	// must all see the same key or a padded spelling of an existing entity
	// would miss the lookup and then collide on insert.
	name = strings.TrimSpace(name)

	existing, err := r.entities.FindByNameTypeTx(ctx, tx, name, entityType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &model.PersistenceError{Op: "find entity", Err: err}
	}

	now := time.Now().UTC()
	e := &model.Entity{
		ID:         uuid.NewString(),
		Name:       name,
		EntityType: entityType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if entityType == model.EntityDate {
		e.DateValue = parseDateName(name)
	}

	created, err := r.entities.CreateTx(ctx, tx, e)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEntity) {
		return nil, &model.PersistenceError{Op: "create entity", Err: err}
	}

	// Lost a race against a concurrent creator of the same natural key.
	// The winner committed, so one retried lookup must find its row.
	winner, err := r.entities.FindByNameTypeTx(ctx, tx, name, entityType)
	if err != nil {
		return nil, &model.PersistenceError{Op: "reread entity after duplicate", Err: err}
	}
	return winner, nil
}

// parseDateName leniently parses an entity name as a calendar date. Returns
// nil when no known layout matches; malformed date text never blocks a save.
func parseDateName(name string) *time.Time {
	s := strings.TrimSpace(name)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
