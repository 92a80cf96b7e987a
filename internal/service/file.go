package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
	"pdfvault/internal/storage"
)

var tracer trace.Tracer = otel.Tracer("pdfvault/internal/service")

// FileService defines the use cases for a user's PDF files.
// Every operation is scoped to ownerID, which callers take from the identity provider.
type FileService interface {
	// Upload admits a PDF: validate, check quota, write the blob, commit the record.
	// A blob is never left behind when the record is not committed.
	Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*model.FileRecord, error)

	// List returns the owner's files, newest first, optionally filtered by name.
	List(ctx context.Context, ownerID, query string) ([]model.FileRecord, error)

	// Retrieve opens the file content. The caller must close the reader.
	Retrieve(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.FileRecord, error)

	// Delete removes the blob, then the record.
	Delete(ctx context.Context, ownerID, id string) error

	// Rename changes the display name of a file.
	Rename(ctx context.Context, ownerID, id, name string) (*model.FileRecord, error)

	// Stats summarizes the owner's storage usage.
	Stats(ctx context.Context, ownerID string) (*model.UsageStats, error)
}

// Enqueuer schedules post-commit enrichment. It must not block.
type Enqueuer interface {
	Enqueue(rec model.FileRecord) bool
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store    storage.Storage
	repo     repository.FileRepository
	quota    *QuotaGuard
	enqueuer Enqueuer
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time

	cleanupTimeout time.Duration
}

// Option customizes a FileService.
type Option func(*fileService)

// WithEnqueuer hands committed uploads to e for enrichment.
func WithEnqueuer(e Enqueuer) Option {
	return func(s *fileService) { s.enqueuer = e }
}

// WithMetrics records pipeline outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(s *fileService) { s.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *fileService) { s.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *fileService) { s.now = now }
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, quota *QuotaGuard, opts ...Option) FileService {
	s := &fileService{
		store:          store,
		repo:           repo,
		quota:          quota,
		log:            slog.Default(),
		now:            time.Now,
		cleanupTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
