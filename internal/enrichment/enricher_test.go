package enrichment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText([]byte) (string, error) { return f.text, f.err }

type fakeClassifier struct {
	labels []string
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string) ([]string, error) {
	f.calls++
	return f.labels, f.err
}

type recordingTagger struct {
	mu   sync.Mutex
	tags map[string][]string
}

func (r *recordingTagger) AddTags(_ context.Context, id string, labels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tags == nil {
		r.tags = map[string][]string{}
	}
	r.tags[id] = labels
	return nil
}

func (r *recordingTagger) get(id string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.tags[id]
	return v, ok
}

func newStore(t *testing.T, key string) storage.Storage {
	t.Helper()
	s, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	if key != "" {
		_, err = s.Put(context.Background(), key, bytes.NewReader([]byte("%PDF-1.4")), storage.PutObjectOptions{Size: 8})
		require.NoError(t, err)
	}
	return s
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnricher_Enrich(t *testing.T) {
	rec := model.FileRecord{ID: "id-1", StorageRef: "id-1-a.pdf"}

	t.Run("classifies extracted text", func(t *testing.T) {
		tagger := &recordingTagger{}
		cls := &fakeClassifier{labels: []string{"Legal"}}
		e := New(newStore(t, rec.StorageRef), tagger, fakeExtractor{text: "contract"}, cls, Config{}, discard())

		labels, err := e.Enrich(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, []string{"Legal"}, labels)
		got, _ := tagger.get("id-1")
		assert.Equal(t, []string{"Legal"}, got)
	})

	t.Run("empty text is tagged Other", func(t *testing.T) {
		tagger := &recordingTagger{}
		cls := &fakeClassifier{}
		e := New(newStore(t, rec.StorageRef), tagger, fakeExtractor{}, cls, Config{}, discard())

		labels, err := e.Enrich(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, []string{FallbackLabel}, labels)
		assert.Zero(t, cls.calls)
	})

	t.Run("classifier failure stores nothing", func(t *testing.T) {
		tagger := &recordingTagger{}
		cls := &fakeClassifier{err: errors.New("rate limited")}
		e := New(newStore(t, rec.StorageRef), tagger, fakeExtractor{text: "x"}, cls, Config{}, discard())

		_, err := e.Enrich(context.Background(), rec)

		assert.ErrorContains(t, err, "rate limited")
		_, ok := tagger.get("id-1")
		assert.False(t, ok)
	})

	t.Run("missing blob", func(t *testing.T) {
		e := New(newStore(t, ""), &recordingTagger{}, fakeExtractor{}, &fakeClassifier{}, Config{}, discard())

		_, err := e.Enrich(context.Background(), rec)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestEnricher_WorkersProcessQueue(t *testing.T) {
	rec := model.FileRecord{ID: "id-1", StorageRef: "id-1-a.pdf"}
	tagger := &recordingTagger{}
	e := New(newStore(t, rec.StorageRef), tagger, fakeExtractor{text: "x"}, &fakeClassifier{labels: []string{"Business"}},
		Config{Workers: 1, QueueSize: 4, JobTimeout: time.Second}, discard())

	e.Start(context.Background())
	defer e.Stop()

	require.True(t, e.Enqueue(rec))
	require.Eventually(t, func() bool {
		_, ok := tagger.get("id-1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnricher_EnqueueNeverBlocks(t *testing.T) {
	e := New(newStore(t, ""), &recordingTagger{}, fakeExtractor{}, &fakeClassifier{}, Config{QueueSize: 1}, discard())

	// Not started, so nothing drains the queue.
	assert.True(t, e.Enqueue(model.FileRecord{ID: "a"}))
	assert.False(t, e.Enqueue(model.FileRecord{ID: "b"}))
	e.Stop()
}
