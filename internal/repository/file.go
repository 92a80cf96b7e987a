package repository

import (
	"context"
	"time"

	"pdfvault/internal/model"
)

// FileRepository is the metadata store for file records.
// Persistence only, except that the quota re-check lives inside
// InsertWithinQuota because only the store can make it atomic.
type FileRepository interface {
	// InsertWithinQuota stores rec only if the owner's summed size plus rec.Size stays
	// within limit. The check and the insert are atomic with respect to concurrent
	// inserts for the same owner. Returns *model.QuotaExceededError otherwise.
	InsertWithinQuota(ctx context.Context, rec *model.FileRecord, limit int64) (*model.FileRecord, error)

	// FindByOwner returns the owner's records, newest first.
	FindByOwner(ctx context.Context, ownerID string, f FileFilter) ([]model.FileRecord, error)

	// FindOne returns the record with id owned by ownerID, or ErrNotFound.
	FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error)

	// SumSizeByOwner returns the total bytes stored by ownerID.
	SumSizeByOwner(ctx context.Context, ownerID string) (int64, error)

	// Delete removes a record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// Rename updates the display name and UpdatedAt of a record owned by ownerID.
	// The storage reference is left untouched.
	Rename(ctx context.Context, id, ownerID, name string, at time.Time) (*model.FileRecord, error)

	// AddTags attaches labels to a record. Existing labels and missing records are ignored.
	AddTags(ctx context.Context, id string, labels []string) error
}

// FileFilter narrows FindByOwner results.
type FileFilter struct {
	// NameContains matches display names case-insensitively when non-empty.
	NameContains string
}
