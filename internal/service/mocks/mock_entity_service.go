package mocks

import (
	"context"

	"archivedoc/internal/model"
	"archivedoc/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockEntityService struct {
	mock.Mock
}

func (m *MockEntityService) List(ctx context.Context, entityType model.EntityType, name string, limit, offset int) (*service.EntityListResult, error) {
	args := m.Called(ctx, entityType, name, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EntityListResult), args.Error(1)
}

func (m *MockEntityService) Get(ctx context.Context, id string) (*model.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockEntityService) CleanupOrphans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
