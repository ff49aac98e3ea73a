// Package sink persists final transcripts to PostgreSQL, decoupling the
// event handlers (which must not block the listen loop) from database
// I/O through an in-memory queue.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VpkPrasanna/deepgram-go/internal/config"
	"github.com/VpkPrasanna/deepgram-go/internal/live"
)

// TranscriptRow is one final transcript ready for insertion.
type TranscriptRow struct {
	ID         uuid.UUID
	SessionID  string
	RequestID  string
	Channel    int
	Transcript string
	Confidence float64
	Start      float64
	Duration   float64
	ReceivedAt time.Time
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Inserts int64
	Flushes int64
	Errors  int64
	Skipped int64
}

// TranscriptWriter batches final transcripts into the transcripts table.
type TranscriptWriter struct {
	cfg    config.SinkConfig
	logger *slog.Logger

	sessionID func() string

	queue *Queue[TranscriptRow]
	db    *pgxpool.Pool

	batchMu sync.Mutex
	batch   []TranscriptRow
	metrics WriterMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTranscriptWriter creates a writer. sessionID supplies the session
// identifier recorded on each row (live.Client.SessionID).
func NewTranscriptWriter(cfg config.SinkConfig, db *pgxpool.Pool, sessionID func() string, logger *slog.Logger) *TranscriptWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptWriter{
		cfg:       cfg,
		logger:    logger,
		sessionID: sessionID,
		queue:     NewQueue[TranscriptRow](cfg.BufferSize),
		db:        db,
		batch:     make([]TranscriptRow, 0, cfg.BatchSize),
	}
}

// HandleTranscript is a live.Handler: it converts final transcript
// events into rows and queues them. Interim results are skipped.
func (w *TranscriptWriter) HandleTranscript(ev live.Event, extra map[string]any) {
	result, ok := ev.(*live.TranscriptResponse)
	if !ok || !result.IsFinal {
		return
	}
	if len(result.Channel.Alternatives) == 0 {
		return
	}

	alt := result.Channel.Alternatives[0]
	if alt.Transcript == "" {
		w.batchMu.Lock()
		w.metrics.Skipped++
		w.batchMu.Unlock()
		return
	}

	channel := 0
	if len(result.ChannelIndex) > 0 {
		channel = result.ChannelIndex[0]
	}

	w.queue.Push(TranscriptRow{
		ID:         uuid.New(),
		SessionID:  w.sessionID(),
		RequestID:  result.Metadata.RequestID,
		Channel:    channel,
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
		Start:      result.Start,
		Duration:   result.Duration,
		ReceivedAt: time.Now(),
	})
}

// Start begins consuming queued rows and flushing batches.
func (w *TranscriptWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("transcript writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the queue, flushes the remaining batch, and shuts down.
func (w *TranscriptWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping transcript writer")

	w.queue.Close()
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("transcript writer stop timed out")
	}

	// Anything still queued plus the open batch.
	for _, row := range w.queue.Drain(0) {
		w.append(row)
	}
	w.flush()

	w.logger.Info("transcript writer stopped")
	return nil
}

// Stats returns current metrics.
func (w *TranscriptWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *TranscriptWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		row, ok := w.queue.Pop()
		if !ok {
			return
		}
		w.append(row)
	}
}

func (w *TranscriptWriter) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *TranscriptWriter) append(row TranscriptRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

func (w *TranscriptWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]TranscriptRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	if err := w.insert(batch); err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed transcripts",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

func (w *TranscriptWriter) insert(rows []TranscriptRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO transcripts
				(id, session_id, request_id, channel, transcript, confidence, start_sec, duration_sec, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.SessionID, r.RequestID, r.Channel, r.Transcript, r.Confidence, r.Start, r.Duration, r.ReceivedAt)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
