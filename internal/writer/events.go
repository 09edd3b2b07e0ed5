package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bitgallery/scanview/internal/model"
	"github.com/bitgallery/scanview/internal/queue"
)

const insertEventSQL = `
INSERT INTO listing_events (
    event_id, event_type, chain_id, listing_id,
    collection, token_id, name, image, price_display, seller,
    listed_at_ms, recorded_at_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (event_id) DO NOTHING`

// Config holds writer configuration.
type Config struct {
	BatchSize     int           // Flush when the batch reaches this size
	FlushInterval time.Duration // Flush at least this often
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     200,
		FlushInterval: 2 * time.Second,
	}
}

// Metrics counts writer activity.
type Metrics struct {
	EventsWritten int64
	Batches       int64
	FailedBatches int64
}

// EventWriter consumes ViewEvents and archives them to Postgres.
type EventWriter struct {
	cfg    Config
	logger *slog.Logger

	input *queue.Buffer[model.ViewEvent]
	db    *pgxpool.Pool

	batchMu sync.Mutex
	batch   []model.ViewEvent
	metrics Metrics

	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEventWriter creates a new EventWriter.
func NewEventWriter(cfg Config, input *queue.Buffer[model.ViewEvent], db *pgxpool.Pool, logger *slog.Logger) *EventWriter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	return &EventWriter{
		cfg:    cfg,
		logger: logger,
		input:  input,
		db:     db,
		batch:  make([]model.ViewEvent, 0, cfg.BatchSize),
	}
}

// Start begins consuming events and writing to the database.
func (w *EventWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("event writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains and shuts down the writer.
func (w *EventWriter) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("event writer stop timed out")
	}

	// Drain whatever is still buffered, then flush.
	for {
		ev, ok := w.input.TryPop()
		if !ok {
			break
		}
		w.append(ev)
	}
	w.flush()

	w.logger.Info("event writer stopped")
	return nil
}

// Stats returns current metrics.
func (w *EventWriter) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *EventWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		ev, ok := w.input.TryPop()
		if !ok {
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
				continue
			}
		}
		w.append(ev)
	}
}

func (w *EventWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// append adds an event to the batch, flushing if the batch is full.
func (w *EventWriter) append(ev model.ViewEvent) {
	w.batchMu.Lock()
	w.batch = append(w.batch, ev)
	full := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if full {
		w.flush()
	}
}

// flush writes the current batch in one round trip.
func (w *EventWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]model.ViewEvent, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	pgBatch := &pgx.Batch{}
	for _, ev := range batch {
		pgBatch.Queue(insertEventSQL,
			ev.EventID,
			ev.Type,
			ev.Listing.ChainID,
			ev.Listing.ListingID,
			ev.Listing.Collection,
			ev.Listing.TokenID,
			ev.Listing.Name,
			ev.Listing.Image,
			ev.Listing.PriceDisplay,
			ev.Listing.Seller,
			ev.Listing.ListedAtMs,
			ev.RecordedAt,
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := w.db.SendBatch(ctx, pgBatch).Close()

	w.batchMu.Lock()
	defer w.batchMu.Unlock()

	if err != nil {
		w.metrics.FailedBatches++
		w.logger.Error("failed to write event batch",
			"events", len(batch),
			"err", err,
		)
		return
	}

	w.metrics.EventsWritten += int64(len(batch))
	w.metrics.Batches++
	w.logger.Debug("flushed event batch",
		"events", len(batch),
		"duration", time.Since(start),
	)
}
