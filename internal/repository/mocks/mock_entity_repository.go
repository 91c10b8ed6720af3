package mocks

import (
	"context"
	"database/sql"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) FindByNameTypeTx(ctx context.Context, tx *sql.Tx, name string, entityType model.EntityType) (*model.Entity, error) {
	args := m.Called(ctx, tx, name, entityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockEntityRepository) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Entity) (*model.Entity, error) {
	args := m.Called(ctx, tx, e)
	if rf, ok := args.Get(0).(func(context.Context, *sql.Tx, *model.Entity) *model.Entity); ok {
		return rf(ctx, tx, e), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockEntityRepository) FindByID(ctx context.Context, id string) (*model.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockEntityRepository) List(ctx context.Context, q repository.EntityQuery) (*repository.PageResult[model.Entity], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Entity]), args.Error(1)
}

func (m *MockEntityRepository) DocumentsFor(ctx context.Context, entityID string) ([]model.Document, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockEntityRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
