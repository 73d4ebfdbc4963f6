package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/weicopy/cli/internal/models"
)

// Lister is the slice of the clipboard API the poller needs.
type Lister interface {
	List(ctx context.Context) ([]models.ClipboardItem, error)
}

// Poller fetches the shared clipboard on a fixed interval and publishes
// settled snapshots. Fetches are sequence numbered at issue time: a
// response that settles after a newer one has already been applied is
// discarded, so the published snapshot never moves backwards.
type Poller struct {
	mu       sync.Mutex
	lister   Lister
	store    SnapshotStore
	interval time.Duration
	logger   *log.Logger

	cancel  context.CancelFunc
	issued  uint64
	applied uint64
	current Snapshot
	updates chan Snapshot
}

// NewPoller creates a Poller fetching via lister every interval. store may
// be nil to skip local persistence.
func NewPoller(lister Lister, store SnapshotStore, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		lister:   lister,
		store:    store,
		interval: interval,
		logger:   logger,
		updates:  make(chan Snapshot, 1),
	}
}

// Start begins polling: one immediate fetch, then one per interval.
// Calling Start while running restarts the cycle, which is how a manual
// refresh works: the refresh fetch happens now and the next automatic
// fetch is a full interval away.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(runCtx)
}

// RefreshNow fetches immediately and rebases the polling interval.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.Start(ctx)
}

// Stop halts polling. The last published snapshot stays available via
// Current.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Current returns the most recently settled snapshot. The zero Snapshot
// means nothing has settled yet.
func (p *Poller) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Updates returns a channel carrying settled snapshots. Sends never block;
// a slow reader sees only the newest snapshot.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

func (p *Poller) run(ctx context.Context) {
	p.fetch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		}
	}
}

// fetch issues one sequence-numbered fetch and applies the result unless a
// later fetch settled first. Errors are logged and polling continues; the
// previous snapshot stays published.
func (p *Poller) fetch(ctx context.Context) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	items, err := p.lister.List(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("clipboard fetch failed", "seq", seq, "err", err)
		}
		return
	}

	snap := Snapshot{Seq: seq, Items: items, FetchedAt: time.Now()}

	p.mu.Lock()
	if seq <= p.applied {
		applied := p.applied
		p.mu.Unlock()
		p.logger.Debug("discarding stale fetch", "seq", seq, "applied", applied)
		return
	}
	p.applied = seq
	p.current = snap

	// publish before dropping the lock. All sends are non-blocking, and
	// serializing them with the sequence check keeps a fetch that lost the
	// race from replacing a newer queued snapshot with its own.
	select {
	case p.updates <- snap:
	default:
		// drop the queued snapshot so the newest one wins
		select {
		case <-p.updates:
		default:
		}
		select {
		case p.updates <- snap:
		default:
		}
	}
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.ReplaceAll(items); err != nil {
			p.logger.Warn("failed to persist snapshot", "err", err)
		}
	}
}
