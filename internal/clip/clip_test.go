package clip

import "testing"

func TestHeadlessBackend(t *testing.T) {
	b := &headlessBackend{watchCh: make(chan struct{})}

	items, err := b.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items, got %v", items)
	}

	if err := b.Write([]Item{{MIME: "text/plain", Data: []byte("x")}}); err != nil {
		t.Errorf("Write() should discard silently, got %v", err)
	}

	select {
	case <-b.Watch():
		t.Error("headless backend should never signal changes")
	default:
	}

	b.Close()
}
