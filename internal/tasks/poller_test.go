package tasks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
)

type stepLister struct {
	mu      sync.Mutex
	calls   int
	handler func(call int, ctx context.Context) ([]models.ClipboardItem, error)
}

func (s *stepLister) List(ctx context.Context) ([]models.ClipboardItem, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.handler(call, ctx)
}

func (s *stepLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func itemsNamed(ids ...string) []models.ClipboardItem {
	items := make([]models.ClipboardItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.ClipboardItem{ID: id, Type: models.TypeText, Content: id})
	}
	return items
}

func TestPollerPublishesSnapshots(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		return itemsNamed(fmt.Sprintf("item-%d", call)), nil
	}}
	p := NewPoller(lister, nil, time.Hour, shared.NewLogger(os.Stderr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	select {
	case snap := <-p.Updates():
		if len(snap.Items) != 1 || snap.Items[0].ID != "item-1" {
			t.Errorf("unexpected snapshot %+v", snap.Items)
		}
		if snap.Seq == 0 {
			t.Error("snapshot should carry a sequence number")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
	}

	if got := p.Current(); len(got.Items) != 1 || got.Items[0].ID != "item-1" {
		t.Errorf("Current() = %+v", got.Items)
	}
}

func TestPollerDiscardsStaleFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		if call == 1 {
			close(started)
			<-release
			return itemsNamed("old"), nil
		}
		return itemsNamed("new"), nil
	}}
	p := NewPoller(lister, nil, time.Hour, shared.NewLogger(os.Stderr))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.fetch(ctx)
	}()
	<-started

	// second fetch settles first
	p.fetch(ctx)
	close(release)
	wg.Wait()

	snap := p.Current()
	if len(snap.Items) != 1 || snap.Items[0].ID != "new" {
		t.Errorf("stale fetch should be discarded, got %+v", snap.Items)
	}
	if snap.Seq != 2 {
		t.Errorf("expected applied seq 2, got %d", snap.Seq)
	}
}

func TestPollerKeepsSnapshotOnError(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		if call == 1 {
			return itemsNamed("good"), nil
		}
		return nil, fmt.Errorf("server down")
	}}
	p := NewPoller(lister, nil, time.Hour, shared.NewLogger(os.Stderr))
	ctx := context.Background()

	p.fetch(ctx)
	p.fetch(ctx)

	snap := p.Current()
	if len(snap.Items) != 1 || snap.Items[0].ID != "good" {
		t.Errorf("failed fetch should keep previous snapshot, got %+v", snap.Items)
	}
}

func TestPollerRefreshNow(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		return itemsNamed(fmt.Sprintf("item-%d", call)), nil
	}}
	p := NewPoller(lister, nil, time.Hour, shared.NewLogger(os.Stderr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	select {
	case <-p.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	// with an hour-long interval the only way a second fetch happens is
	// the manual refresh
	p.RefreshNow(ctx)
	select {
	case snap := <-p.Updates():
		if snap.Items[0].ID == "item-1" {
			t.Errorf("expected a fresh fetch, got %+v", snap.Items)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not trigger a fetch")
	}

	// two Start calls, two immediate fetches, nothing else
	if got := lister.callCount(); got != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", got)
	}
}

func TestPollerRestartReplacesTimer(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		return itemsNamed(fmt.Sprintf("item-%d", call)), nil
	}}
	interval := 100 * time.Millisecond
	p := NewPoller(lister, nil, interval, shared.NewLogger(os.Stderr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	p.RefreshNow(ctx)

	// a single 100ms timer can fire at most 4 times in this window; a
	// leaked timer from the first Start roughly doubles the count
	time.Sleep(450 * time.Millisecond)
	p.Stop()

	got := lister.callCount()
	if got < 3 {
		t.Errorf("timer does not appear to be running, got %d fetches", got)
	}
	if got > 6 {
		t.Errorf("restart leaked a timer, got %d fetches", got)
	}
}

func TestPollerQueuedSnapshotNeverStale(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		return itemsNamed(fmt.Sprintf("item-%d", call)), nil
	}}
	logger := shared.NewLogger(os.Stderr)

	// two concurrent fetches race the sequence gate and the channel; the
	// queued snapshot must always be the one that was applied last
	for i := 0; i < 5000; i++ {
		p := NewPoller(lister, nil, time.Hour, logger)

		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.fetch(context.Background())
			}()
		}
		wg.Wait()

		select {
		case snap := <-p.Updates():
			if applied := p.Current().Seq; snap.Seq != applied {
				t.Fatalf("iteration %d: queued snapshot seq %d, applied seq %d", i, snap.Seq, applied)
			}
		default:
			t.Fatalf("iteration %d: no snapshot queued", i)
		}
	}
}

type recordingStore struct {
	mu    sync.Mutex
	items []models.ClipboardItem
}

func (r *recordingStore) ReplaceAll(items []models.ClipboardItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	return nil
}

func TestPollerWritesThroughToStore(t *testing.T) {
	lister := &stepLister{handler: func(call int, ctx context.Context) ([]models.ClipboardItem, error) {
		return itemsNamed("persisted"), nil
	}}
	store := &recordingStore{}
	p := NewPoller(lister, store, time.Hour, shared.NewLogger(os.Stderr))

	p.fetch(context.Background())

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.items) != 1 || store.items[0].ID != "persisted" {
		t.Errorf("snapshot not persisted, got %+v", store.items)
	}
}
