package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
	"pdfvault/internal/storage"
)

const (
	maxNameBytes = 255
	recentWindow = 7 * 24 * time.Hour
)

func (s *fileService) List(ctx context.Context, ownerID, query string) ([]model.FileRecord, error) {
	ctx, span := tracer.Start(ctx, "FileService.List")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	items, err := s.repo.FindByOwner(ctx, ownerID, repository.FileFilter{NameContains: strings.TrimSpace(query)})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// findOwned loads a record scoped to ownerID. A record owned by someone else
// is reported exactly like a missing one.
func (s *fileService) findOwned(ctx context.Context, ownerID, id string) (*model.FileRecord, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindOne(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *fileService) Retrieve(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.FileRecord, error) {
	ctx, span := tracer.Start(ctx, "FileService.Retrieve")
	defer span.End()

	rec, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := s.store.Get(ctx, rec.StorageRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.corrupt()
			s.log.ErrorContext(ctx, "corrupt_state",
				"file_id", rec.ID, "owner_id", ownerID, "storage_ref", rec.StorageRef)
			return nil, nil, ErrCorruptState
		}
		return nil, nil, fmt.Errorf("read content: %w", err)
	}
	return rc, rec, nil
}

func (s *fileService) Delete(ctx context.Context, ownerID, id string) error {
	ctx, span := tracer.Start(ctx, "FileService.Delete")
	defer span.End()

	rec, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	// Blob first: if the record delete then fails, a retry finds the record and
	// the idempotent blob delete succeeds again.
	if err := s.store.Delete(ctx, rec.StorageRef); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.log.InfoContext(ctx, "file_deleted", "file_id", rec.ID, "owner_id", ownerID, "size", rec.Size)
	return nil
}

func (s *fileService) Rename(ctx context.Context, ownerID, id, name string) (*model.FileRecord, error) {
	ctx, span := tracer.Start(ctx, "FileService.Rename")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameBytes || !utf8.ValidString(name) {
		return nil, ErrInvalidName
	}

	rec, err := s.repo.Rename(ctx, id, ownerID, name, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *fileService) Stats(ctx context.Context, ownerID string) (*model.UsageStats, error) {
	ctx, span := tracer.Start(ctx, "FileService.Stats")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	items, err := s.repo.FindByOwner(ctx, ownerID, repository.FileFilter{})
	if err != nil {
		return nil, err
	}

	limit := s.quota.Limit()
	stats := &model.UsageStats{LimitBytes: limit, TotalFiles: len(items)}
	cutoff := s.now().Add(-recentWindow)
	for _, it := range items {
		stats.UsedBytes += it.Size
		if it.CreatedAt.After(cutoff) {
			stats.RecentUploads++
		}
	}
	if stats.TotalFiles > 0 {
		stats.AverageFileSize = stats.UsedBytes / int64(stats.TotalFiles)
	}
	stats.AvailableBytes = max(limit-stats.UsedBytes, 0)
	if limit > 0 {
		stats.UsagePercent = float64(stats.UsedBytes) / float64(limit) * 100
	}
	return stats, nil
}
