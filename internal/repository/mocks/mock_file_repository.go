package mocks

import (
	"context"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) InsertWithinQuota(ctx context.Context, rec *model.FileRecord, limit int64) (*model.FileRecord, error) {
	args := m.Called(ctx, rec, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) FindByOwner(ctx context.Context, ownerID string, f repository.FileFilter) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) Rename(ctx context.Context, id, ownerID, name string, at time.Time) (*model.FileRecord, error) {
	args := m.Called(ctx, id, ownerID, name, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) AddTags(ctx context.Context, id string, labels []string) error {
	args := m.Called(ctx, id, labels)
	return args.Error(0)
}
