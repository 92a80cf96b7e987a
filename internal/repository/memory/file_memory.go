package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
)

// FileMemory is an in-process repository.FileRepository for development and tests.
// A single mutex makes InsertWithinQuota atomic the same way the Postgres advisory lock does.
type FileMemory struct {
	mu    sync.RWMutex
	files map[string]model.FileRecord
}

// NewFileMemory creates an empty store.
func NewFileMemory() *FileMemory {
	return &FileMemory{files: make(map[string]model.FileRecord)}
}

var _ repository.FileRepository = (*FileMemory)(nil)

func (m *FileMemory) InsertWithinQuota(ctx context.Context, rec *model.FileRecord, limit int64) (*model.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	usage := m.sumLocked(rec.OwnerID)
	if usage+rec.Size > limit {
		return nil, &model.QuotaExceededError{Current: usage, Limit: limit, Attempted: rec.Size}
	}

	stored := clone(*rec)
	stored.Tags = []string{}
	m.files[rec.ID] = stored
	out := clone(stored)
	return &out, nil
}

func (m *FileMemory) FindByOwner(ctx context.Context, ownerID string, f repository.FileFilter) ([]model.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(f.NameContains)
	items := make([]model.FileRecord, 0)
	for _, rec := range m.files {
		if rec.OwnerID != ownerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.Name), needle) {
			continue
		}
		items = append(items, clone(rec))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (m *FileMemory) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.files[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	out := clone(rec)
	return &out, nil
}

func (m *FileMemory) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sumLocked(ownerID), nil
}

func (m *FileMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	return nil
}

func (m *FileMemory) Rename(ctx context.Context, id, ownerID, name string, at time.Time) (*model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	rec.Name = name
	rec.UpdatedAt = at
	m.files[id] = rec
	out := clone(rec)
	return &out, nil
}

func (m *FileMemory) AddTags(ctx context.Context, id string, labels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(rec.Tags))
	for _, t := range rec.Tags {
		seen[t] = struct{}{}
	}
	tags := append([]string{}, rec.Tags...)
	for _, l := range repository.NormalizeLabels(labels) {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		tags = append(tags, l)
	}
	sort.Strings(tags)
	rec.Tags = tags
	m.files[id] = rec
	return nil
}

func (m *FileMemory) sumLocked(ownerID string) int64 {
	var total int64
	for _, rec := range m.files {
		if rec.OwnerID == ownerID {
			total += rec.Size
		}
	}
	return total
}

func clone(rec model.FileRecord) model.FileRecord {
	rec.Tags = append([]string{}, rec.Tags...)
	return rec
}
