package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	queueSize    = 100
	writeTimeout = 5 * time.Second
)

// Dispatcher hands events to its sinks on a background worker. A full queue
// drops the event; audit never fails a request.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
	queue  chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		sinks:  sinks,
		logger: logger,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if err := s.Write(ctx, ev); err != nil {
				d.logger.Error("audit write failed",
					"action", ev.Action,
					"sink", sinkName(s),
					"err", err,
				)
			}
			cancel()
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sinkName(s Sink) string {
	switch s.(type) {
	case *Logger:
		return "db"
	case *KafkaSink:
		return "kafka"
	default:
		return "custom"
	}
}
