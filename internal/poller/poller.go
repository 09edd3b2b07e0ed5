package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bitgallery/scanview/internal/api"
	"github.com/bitgallery/scanview/internal/model"
	"github.com/bitgallery/scanview/internal/view"
)

// Feed identifies one of the two snapshot sources.
type Feed string

const (
	FeedFast Feed = "fast"
	FeedFull Feed = "full"
)

// UpdateHandler receives the new snapshot whenever a merge changed the
// visible view.
type UpdateHandler interface {
	HandleUpdate(snapshot []model.Listing, result view.MergeResult)
}

// UpdateHandlerFunc is a function adapter for UpdateHandler.
type UpdateHandlerFunc func([]model.Listing, view.MergeResult)

func (f UpdateHandlerFunc) HandleUpdate(s []model.Listing, r view.MergeResult) {
	f(s, r)
}

// Config holds poller configuration.
type Config struct {
	ChainID          int64
	FastInterval     time.Duration // Fast feed period (default: 3.5s)
	FullInterval     time.Duration // Full feed period (default: 9s)
	FullInitialDelay time.Duration // Delay before the first full poll (default: 1.5s)
	Timeout          time.Duration // Per-fetch deadline (default: 10s)
	EmptyStreak      int           // Consecutive empties before an empty feed is trusted (default: 3)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FastInterval:     3500 * time.Millisecond,
		FullInterval:     9 * time.Second,
		FullInitialDelay: 1500 * time.Millisecond,
		Timeout:          10 * time.Second,
		EmptyStreak:      3,
	}
}

// FeedStatus is the per-feed slice of Status.
type FeedStatus struct {
	Rounds           uint64    // Completed poll attempts
	Failures         uint64    // Rounds that ended in a fetch error
	ConsecutiveEmpty int       // Current run of empty snapshots being held back
	LastSuccessAt    time.Time // Zero until the first successful merge
	LastError        string    // Cleared on the next successful round
}

// Status is a point-in-time summary for the /status endpoint.
type Status struct {
	Fast        FeedStatus
	Full        FeedStatus
	Listings    int
	Fingerprint string
}

// feedState tracks per-feed scheduling state. Sequence tokens increase
// monotonically; a completed fetch only merges if its token is still the
// latest one issued for that feed.
type feedState struct {
	seq         uint64
	cancelFetch context.CancelFunc

	rounds       uint64
	failures     uint64
	emptyStreak  int
	lastSuccess  time.Time
	lastErrorMsg string
}

// Poller owns the two poll loops feeding the merged view.
type Poller struct {
	cfg     Config
	client  *api.Client
	view    *view.View
	handler UpdateHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	fast feedState
	full feedState
}

// New creates a new Poller.
func New(cfg Config, client *api.Client, v *view.View, handler UpdateHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = def.FastInterval
	}
	if cfg.FullInterval <= 0 {
		cfg.FullInterval = def.FullInterval
	}
	if cfg.FullInitialDelay <= 0 {
		cfg.FullInitialDelay = def.FullInitialDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.EmptyStreak < 1 {
		cfg.EmptyStreak = def.EmptyStreak
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		view:    v,
		handler: handler,
		logger:  logger,
	}
}

// Start begins both poll loops.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go p.runFast()
	go p.runFull()

	p.logger.Info("listing poller started",
		"chain", p.cfg.ChainID,
		"fast_interval", p.cfg.FastInterval,
		"full_interval", p.cfg.FullInterval,
	)

	return nil
}

// Stop cancels in-flight fetches, stops both timers and waits for the loops
// to exit.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("listing poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a snapshot of poller health.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Status{
		Fast:        feedStatus(&p.fast),
		Full:        feedStatus(&p.full),
		Listings:    p.view.Len(),
		Fingerprint: p.view.Fingerprint(),
	}
}

func feedStatus(st *feedState) FeedStatus {
	return FeedStatus{
		Rounds:           st.rounds,
		Failures:         st.failures,
		ConsecutiveEmpty: st.emptyStreak,
		LastSuccessAt:    st.lastSuccess,
		LastError:        st.lastErrorMsg,
	}
}

func (p *Poller) runFast() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.FastInterval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll(FeedFast)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll(FeedFast)
		}
	}
}

func (p *Poller) runFull() {
	defer p.wg.Done()

	// Offset the first full poll from the fast burst.
	select {
	case <-p.ctx.Done():
		return
	case <-time.After(p.cfg.FullInitialDelay):
	}

	ticker := time.NewTicker(p.cfg.FullInterval)
	defer ticker.Stop()

	p.poll(FeedFull)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll(FeedFull)
		}
	}
}

// poll runs one round for a feed: cancel any in-flight fetch, issue a new one
// under a fresh sequence token, and merge the result if the token is still
// current when the response lands.
func (p *Poller) poll(f Feed) {
	st := p.feed(f)

	p.mu.Lock()
	if st.cancelFetch != nil {
		st.cancelFetch()
	}
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	st.cancelFetch = cancel
	st.seq++
	seq := st.seq
	p.mu.Unlock()
	defer cancel()

	var (
		items []api.FeedItem
		err   error
	)
	if f == FeedFast {
		items, err = p.client.GetFastListings(ctx, p.cfg.ChainID)
	} else {
		items, err = p.client.GetFullListings(ctx, p.cfg.ChainID)
	}

	p.mu.Lock()
	st.rounds++
	if st.seq != seq {
		// A newer poll superseded this one while the response was in
		// flight. Discard silently.
		p.mu.Unlock()
		return
	}

	if err != nil {
		st.failures++
		st.lastErrorMsg = err.Error()
		p.mu.Unlock()

		if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
			return // shutdown, not a failure worth logging
		}
		p.logger.Warn("poll round failed",
			"feed", f,
			"err", err,
		)
		return
	}

	listings := api.Normalize(items)

	// Transient-empty guard: an empty snapshot while the view holds records
	// is suspect. Hold it back until the feed has been empty EmptyStreak
	// times in a row.
	if len(listings) == 0 && p.view.Len() > 0 {
		st.emptyStreak++
		if st.emptyStreak < p.cfg.EmptyStreak {
			streak := st.emptyStreak
			p.mu.Unlock()
			p.logger.Debug("holding back empty snapshot",
				"feed", f,
				"streak", streak,
			)
			return
		}
	} else {
		st.emptyStreak = 0
	}
	p.mu.Unlock()

	now := time.Now()
	var res view.MergeResult
	if f == FeedFast {
		res = p.view.MergeFast(listings, now)
	} else {
		res = p.view.MergeFull(listings, now)
	}

	p.mu.Lock()
	st.lastSuccess = now
	st.lastErrorMsg = ""
	p.mu.Unlock()

	if res.Evicted > 0 || res.Added > 0 {
		p.logger.Info("merged snapshot",
			"feed", f,
			"items", len(listings),
			"added", res.Added,
			"evicted", res.Evicted,
			"listings", p.view.Len(),
		)
	}

	if p.handler != nil && (res.Changed || len(res.Events) > 0) {
		p.handler.HandleUpdate(p.view.Snapshot(), res)
	}
}

func (p *Poller) feed(f Feed) *feedState {
	if f == FeedFast {
		return &p.fast
	}
	return &p.full
}
