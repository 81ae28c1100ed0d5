package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Event struct {
	SalonID  string
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Metadata any
	At       time.Time
}

// Auditor is what the use cases see. Dispatch never blocks and never fails
// the caller.
type Auditor interface {
	Dispatch(ev Event)
}

type Discard struct{}

func (Discard) Dispatch(Event) {}

type Dispatcher struct {
	sink  Sink
	log   *zap.Logger
	queue chan Event

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.sink.Log(ctx, ev); err != nil {
			d.log.Error("audit write failed",
				zap.String("action", ev.Action),
				zap.String("entity_id", ev.EntityID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// queue full: drop rather than fail the request
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to
// end. Dispatch must not be called after Close.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() { close(d.queue) })

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
