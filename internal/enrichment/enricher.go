// Package enrichment tags committed files with document categories in the background.
// Nothing here can change whether an upload succeeded.
package enrichment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/storage"
)

// Tagger persists labels for a file.
type Tagger interface {
	AddTags(ctx context.Context, id string, labels []string) error
}

// Config tunes the worker pool.
type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	// MaxBytes caps how much of a blob is loaded for text extraction.
	MaxBytes int64
}

// Enricher runs extraction and classification for committed files on a
// fixed pool of workers fed by a bounded queue.
type Enricher struct {
	store      storage.Storage
	tagger     Tagger
	extractor  Extractor
	classifier Classifier
	cfg        Config
	logger     *slog.Logger

	queue  chan model.FileRecord
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Enricher. Call Start before jobs are processed.
func New(store storage.Storage, tagger Tagger, extractor Extractor, classifier Classifier, cfg Config, logger *slog.Logger) *Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	return &Enricher{
		store:      store,
		tagger:     tagger,
		extractor:  extractor,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "enrichment")),
		queue:      make(chan model.FileRecord, cfg.QueueSize),
	}
}

// Start launches the workers. They stop when ctx is canceled or Stop is called.
func (e *Enricher) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	for i := 0; i < e.cfg.Workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case rec := <-e.queue:
					e.process(ctx, rec)
				}
			}
		}()
	}
	e.logger.Info("enrichment_started", slog.Int("workers", e.cfg.Workers), slog.Int("queue_size", e.cfg.QueueSize))
}

// Stop cancels in-flight jobs and waits for the workers to exit.
// Jobs still queued are dropped.
func (e *Enricher) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	if n := len(e.queue); n > 0 {
		e.logger.Warn("enrichment_stopped", slog.Int("dropped", n))
	}
}

// Enqueue schedules rec for enrichment. It returns false without blocking when
// the queue is full.
func (e *Enricher) Enqueue(rec model.FileRecord) bool {
	select {
	case e.queue <- rec:
		return true
	default:
		e.logger.Warn("enrichment_queue_full", slog.String("file_id", rec.ID))
		return false
	}
}

func (e *Enricher) process(ctx context.Context, rec model.FileRecord) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	labels, err := e.Enrich(ctx, rec)
	if err != nil {
		e.logger.Warn("enrichment_failed",
			slog.String("file_id", rec.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	e.logger.Info("enrichment_done",
		slog.String("file_id", rec.ID),
		slog.Any("labels", labels),
		slog.Duration("took", time.Since(start)),
	)
}

// Enrich classifies one file synchronously and stores the resulting labels.
func (e *Enricher) Enrich(ctx context.Context, rec model.FileRecord) ([]string, error) {
	rc, _, err := e.store.Get(ctx, rec.StorageRef)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.cfg.MaxBytes > 0 {
		r = io.LimitReader(rc, e.cfg.MaxBytes)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	text, err := e.extractor.ExtractText(content)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	var labels []string
	if text == "" {
		labels = []string{FallbackLabel}
	} else {
		labels, err = e.classifier.Classify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}
	}

	if err := e.tagger.AddTags(ctx, rec.ID, labels); err != nil {
		return nil, fmt.Errorf("store tags: %w", err)
	}
	return labels, nil
}
