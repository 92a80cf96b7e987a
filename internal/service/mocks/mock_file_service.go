package mocks

import (
	"context"
	"io"

	"pdfvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*model.FileRecord, error) {
	args := m.Called(ctx, ownerID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID, query string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockFileService) Retrieve(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.FileRecord, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.FileRecord), args.Error(2)
}

func (m *MockFileService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockFileService) Rename(ctx context.Context, ownerID, id, name string) (*model.FileRecord, error) {
	args := m.Called(ctx, ownerID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileService) Stats(ctx context.Context, ownerID string) (*model.UsageStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UsageStats), args.Error(1)
}
