package writer

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bitgallery/scanview/internal/model"
	"github.com/bitgallery/scanview/internal/queue"
)

func TestNewEventWriter_Defaults(t *testing.T) {
	w := NewEventWriter(Config{}, queue.NewBuffer[model.ViewEvent](1), nil, nil)

	if w.cfg.BatchSize != 200 {
		t.Errorf("BatchSize = %d, want 200", w.cfg.BatchSize)
	}
	if w.cfg.FlushInterval != 2*time.Second {
		t.Errorf("FlushInterval = %v, want 2s", w.cfg.FlushInterval)
	}
	if w.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestEventWriter_AppendAccumulatesBelowThreshold(t *testing.T) {
	// Batch size larger than the event count: nothing should attempt a
	// database round trip, so a nil pool is safe here.
	w := NewEventWriter(Config{BatchSize: 100, FlushInterval: time.Hour},
		queue.NewBuffer[model.ViewEvent](8), nil, nil)

	for i := 0; i < 5; i++ {
		w.append(model.ViewEvent{
			EventID: uuid.New(),
			Type:    model.EventListed,
			Listing: model.Listing{ChainID: 56, ListingID: "1"},
		})
	}

	w.batchMu.Lock()
	got := len(w.batch)
	w.batchMu.Unlock()
	if got != 5 {
		t.Errorf("batch holds %d events, want 5", got)
	}

	stats := w.Stats()
	if stats.Batches != 0 || stats.EventsWritten != 0 {
		t.Errorf("stats = %+v, want no writes below threshold", stats)
	}
}
