package mocks

import (
	"context"

	"archivedoc/internal/model"
	"archivedoc/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Submit(ctx context.Context, fileID string, opts service.SubmitOptions) (string, error) {
	args := m.Called(ctx, fileID, opts)
	return args.String(0), args.Error(1)
}

func (m *MockJobService) Status(ctx context.Context, id string) (*model.ProcessingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessingJob), args.Error(1)
}

func (m *MockJobService) Cancel(ctx context.Context, id string) (*model.ProcessingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessingJob), args.Error(1)
}

func (m *MockJobService) Sweep(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}
