package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *memorySink) Log(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, zaptest.NewLogger(t), 10)

	for i := 0; i < 5; i++ {
		d.Dispatch(Event{Action: "appointment.cancelled", EntityID: "ap-1"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(sink.events) != 5 {
		t.Fatalf("got %d events, want 5", len(sink.events))
	}
}
