package service

import (
	"context"
	"fmt"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
)

// QuotaGuard admits or rejects uploads against a fixed per-user byte ceiling.
// Usage is always read from the metadata store; nothing is cached between calls.
type QuotaGuard struct {
	repo  repository.FileRepository
	limit int64
}

// NewQuotaGuard builds a guard enforcing limit bytes per user.
func NewQuotaGuard(repo repository.FileRepository, limit int64) *QuotaGuard {
	return &QuotaGuard{repo: repo, limit: limit}
}

// Limit returns the configured ceiling.
func (g *QuotaGuard) Limit() int64 {
	return g.limit
}

// Usage returns the bytes currently stored by ownerID.
func (g *QuotaGuard) Usage(ctx context.Context, ownerID string) (int64, error) {
	used, err := g.repo.SumSizeByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("read usage: %w", err)
	}
	return used, nil
}

// CheckAdmission returns nil when ownerID can store size more bytes, or a
// *model.QuotaExceededError. It does not reserve anything; two concurrent callers
// can both pass, which InsertWithinQuota settles at commit time.
func (g *QuotaGuard) CheckAdmission(ctx context.Context, ownerID string, size int64) error {
	used, err := g.Usage(ctx, ownerID)
	if err != nil {
		return err
	}
	if used+size > g.limit {
		return &model.QuotaExceededError{Current: used, Limit: g.limit, Attempted: size}
	}
	return nil
}
