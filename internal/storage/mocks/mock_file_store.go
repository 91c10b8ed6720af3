package mocks

import (
	"context"
	"io"
	"time"

	"archivedoc/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) GetContent(ctx context.Context, fileID string) ([]byte, string, error) {
	args := m.Called(ctx, fileID)
	var data []byte
	if args.Get(0) != nil {
		data = args.Get(0).([]byte)
	}
	return data, args.String(1), args.Error(2)
}

func (m *MockFileStore) GetMetadata(ctx context.Context, fileID string) (storage.FileMetadata, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).(storage.FileMetadata), args.Error(1)
}

func (m *MockFileStore) Put(ctx context.Context, key string, r io.Reader, opt storage.PutOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFileStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
