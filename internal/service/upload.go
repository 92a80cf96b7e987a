package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pdfvault/internal/model"
	"pdfvault/internal/storage"
)

// PDFContentType is the only content type stored and served.
const PDFContentType = "application/pdf"

// stage tracks how far an upload got, so failures can be logged and compensated.
type stage int

const (
	stageReceived stage = iota
	stageValidated
	stageQuotaChecked
	stageBlobWritten
	stageMetadataCommitted
	stageRolledBack
)

func (s stage) String() string {
	switch s {
	case stageReceived:
		return "received"
	case stageValidated:
		return "validated"
	case stageQuotaChecked:
		return "quota_checked"
	case stageBlobWritten:
		return "blob_written"
	case stageMetadataCommitted:
		return "metadata_committed"
	case stageRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// validateCandidate checks the declared name, type and size. It touches no resources.
func validateCandidate(r io.Reader, name, contentType string, size int64) error {
	if r == nil {
		return ErrReaderNil
	}
	if len(name) > maxNameBytes {
		return ErrInvalidName
	}
	if !isPDF(contentType) {
		return ErrUnsupportedFormat
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	return nil
}

func isPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch strings.ToLower(mt) {
	case "application/pdf", "application/x-pdf":
		return true
	}
	return false
}

func (s *fileService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*model.FileRecord, error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload")
	defer span.End()
	span.SetAttributes(attribute.Int64("file.size", size))

	st := stageReceived
	rec, err := s.upload(ctx, &st, ownerID, r, originalFilename, contentType, size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.String())
	}
	span.SetAttributes(attribute.String("upload.stage", st.String()))
	return rec, err
}

func (s *fileService) upload(ctx context.Context, st *stage, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*model.FileRecord, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if err := validateCandidate(r, originalFilename, contentType, size); err != nil {
		s.metrics.upload(outcomeRejected)
		return nil, err
	}
	*st = stageValidated

	if err := s.quota.CheckAdmission(ctx, ownerID, size); err != nil {
		var qe *model.QuotaExceededError
		if errors.As(err, &qe) {
			s.metrics.upload(outcomeQuotaExceeded)
			return nil, qe
		}
		s.metrics.upload(outcomeMetadataError)
		return nil, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}
	*st = stageQuotaChecked

	id := uuid.NewString()
	ref := StorageReference(id, originalFilename)

	info, err := s.store.Put(ctx, ref, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: PDFContentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"owner-id":          ownerID,
		},
	})
	if err != nil {
		s.metrics.upload(outcomeStorageError)
		s.log.ErrorContext(ctx, "upload_failed",
			"stage", st.String(), "file_id", id, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	*st = stageBlobWritten

	// A body shorter or longer than declared would make quota accounting lie.
	if info.Size != size {
		err := fmt.Errorf("wrote %d bytes, declared %d", info.Size, size)
		s.rollback(ctx, st, ownerID, id, ref, err)
		s.metrics.upload(outcomeStorageError)
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	now := s.now().UTC()
	stored, err := s.repo.InsertWithinQuota(ctx, &model.FileRecord{
		ID:          id,
		OwnerID:     ownerID,
		Name:        originalFilename,
		Size:        size,
		StorageRef:  ref,
		ContentType: PDFContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, s.quota.Limit())
	if err != nil {
		// Covers store faults, cancellation and a quota race lost at commit time alike.
		s.rollback(ctx, st, ownerID, id, ref, err)

		var qe *model.QuotaExceededError
		if errors.As(err, &qe) {
			s.metrics.upload(outcomeQuotaExceeded)
			return nil, qe
		}
		s.metrics.upload(outcomeMetadataError)
		return nil, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}
	*st = stageMetadataCommitted
	s.metrics.upload(outcomeCommitted)

	if s.enqueuer != nil && !s.enqueuer.Enqueue(*stored) {
		s.log.WarnContext(ctx, "enrichment_skipped", "file_id", stored.ID, "reason", "queue full")
	}
	return stored, nil
}

// rollback deletes a blob whose record was not committed. It runs detached from the
// request's cancellation so a client disconnect still gets cleaned up.
func (s *fileService) rollback(ctx context.Context, st *stage, ownerID, id, ref string, cause error) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cleanupTimeout)
	defer cancel()

	failedAt := st.String()
	*st = stageRolledBack

	if err := s.store.Delete(cleanupCtx, ref); err != nil {
		s.metrics.orphanedBlob()
		s.log.ErrorContext(ctx, "orphaned_blob_warning",
			"file_id", id,
			"owner_id", ownerID,
			"storage_ref", ref,
			"failed_stage", failedAt,
			"cause", cause,
			"error", err,
		)
		return
	}
	s.log.WarnContext(ctx, "upload_rolled_back",
		"file_id", id, "owner_id", ownerID, "failed_stage", failedAt, "cause", cause)
}
