package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const selectFiles = `
	SELECT f.id, f.owner_id, f.name, f.size, f.storage_ref, f.content_type,
	       COALESCE(string_agg(t.label, ',' ORDER BY t.label), '') AS tags,
	       f.created_at, f.updated_at
	FROM files f
	LEFT JOIN file_tags t ON t.file_id = f.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(s rowScanner) (*model.FileRecord, error) {
	var (
		f    model.FileRecord
		tags string
	)
	if err := s.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Name,
		&f.Size,
		&f.StorageRef,
		&f.ContentType,
		&tags,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.Tags = splitTags(tags)
	return &f, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// InsertWithinQuota serializes inserts per owner with a transaction-scoped advisory
// lock, re-reads the owner's usage and inserts only if the limit still holds.
func (r *FilePostgres) InsertWithinQuota(ctx context.Context, rec *model.FileRecord, limit int64) (*model.FileRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, rec.OwnerID); err != nil {
		return nil, fmt.Errorf("lock owner usage: %w", err)
	}

	var usage int64
	const qUsage = `SELECT COALESCE(SUM(size), 0) FROM files WHERE owner_id = $1`
	if err := tx.QueryRowContext(ctx, qUsage, rec.OwnerID).Scan(&usage); err != nil {
		return nil, fmt.Errorf("read owner usage: %w", err)
	}
	if usage+rec.Size > limit {
		return nil, &model.QuotaExceededError{Current: usage, Limit: limit, Attempted: rec.Size}
	}

	const qInsert = `
		INSERT INTO files (id, owner_id, name, size, storage_ref, content_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, owner_id, name, size, storage_ref, content_type, '' AS tags, created_at, updated_at
	`
	out, err := scanFile(tx.QueryRowContext(ctx, qInsert,
		rec.ID,
		rec.OwnerID,
		rec.Name,
		rec.Size,
		rec.StorageRef,
		rec.ContentType,
		rec.CreatedAt,
		rec.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// FindByOwner lists the owner's files newest first, optionally filtered by name.
func (r *FilePostgres) FindByOwner(ctx context.Context, ownerID string, f repository.FileFilter) ([]model.FileRecord, error) {
	const q = selectFiles + `
		WHERE f.owner_id = $1
		  AND ($2 = '' OR f.name ILIKE '%' || $2 || '%' ESCAPE '\')
		GROUP BY f.id
		ORDER BY f.created_at DESC, f.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, escapeLike(f.NameContains))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindOne fetches a single file by ID, scoped to its owner.
func (r *FilePostgres) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	const q = selectFiles + `
		WHERE f.id = $1 AND f.owner_id = $2
		GROUP BY f.id
	`
	rec, err := scanFile(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// SumSizeByOwner returns the owner's stored bytes.
func (r *FilePostgres) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(size), 0) FROM files WHERE owner_id = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
// Tags go with it through ON DELETE CASCADE.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Rename changes the display name only; storage_ref stays as admitted.
func (r *FilePostgres) Rename(ctx context.Context, id, ownerID, name string, at time.Time) (*model.FileRecord, error) {
	const q = `UPDATE files SET name = $3, updated_at = $4 WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID, name, at)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindOne(ctx, id, ownerID)
}

// AddTags inserts labels, skipping ones already present. The INSERT ... SELECT form
// turns a concurrently deleted file into a no-op instead of a foreign key error.
func (r *FilePostgres) AddTags(ctx context.Context, id string, labels []string) error {
	labels = repository.NormalizeLabels(labels)
	if len(labels) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO file_tags (file_id, label)
		SELECT id, $2 FROM files WHERE id = $1
		ON CONFLICT (file_id, label) DO NOTHING
	`
	for _, label := range labels {
		if _, err := tx.ExecContext(ctx, q, id, label); err != nil {
			return fmt.Errorf("insert tag %q: %w", label, err)
		}
	}
	return tx.Commit()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
