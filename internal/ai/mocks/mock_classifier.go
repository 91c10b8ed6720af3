package mocks

import (
	"context"

	"archivedoc/internal/imaging"

	"github.com/stretchr/testify/mock"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, img imaging.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}
