package mocks

import (
	"context"

	"archivedoc/internal/model"
	"archivedoc/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAnalyzerService struct {
	mock.Mock
}

func (m *MockAnalyzerService) Analyze(ctx context.Context, fileID string, opts service.AnalyzeOptions) (*model.AnalysisResult, error) {
	args := m.Called(ctx, fileID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}
