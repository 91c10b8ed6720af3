package mocks

import (
	"context"
	"database/sql"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateTx(ctx context.Context, tx *sql.Tx, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, tx, doc)
	if rf, ok := args.Get(0).(func(context.Context, *sql.Tx, *model.Document) *model.Document); ok {
		return rf(ctx, tx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) LinkEntitiesTx(ctx context.Context, tx *sql.Tx, documentID string, entityIDs []string) error {
	args := m.Called(ctx, tx, documentID, entityIDs)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if rf, ok := args.Get(0).(func(context.Context, *model.Document) *model.Document); ok {
		return rf(ctx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
