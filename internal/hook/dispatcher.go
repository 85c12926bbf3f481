package hook

import (
	"context"

	"github.com/charmbracelet/log"
)

// queueSize is how many events may wait for delivery before new ones are
// dropped.
const queueSize = 16

// Dispatcher delivers events to hooks on its own goroutine so the frame
// loop never waits on a hook process.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	logger   *log.Logger
	queue    chan Event
}

// NewDispatcher creates a Dispatcher. Call Run to start delivery.
func NewDispatcher(manager *Manager, executor *Executor, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		logger:   logger,
		queue:    make(chan Event, queueSize),
	}
}

// Notify queues ev for delivery without blocking.
func (d *Dispatcher) Notify(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("Hook queue full, dropping event", "type", ev.Type)
	}
}

// Run delivers queued events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	for _, h := range d.manager.For(ev.Type) {
		resp, err := d.executor.Execute(ctx, h, ev)
		if err != nil {
			d.logger.Error("Hook failed", "hook", h.Manifest.Name, "event", ev.Type, "err", err)
			continue
		}
		if !resp.Success {
			d.logger.Warn("Hook reported failure", "hook", h.Manifest.Name, "event", ev.Type, "error", resp.Error)
			continue
		}
		d.logger.Debug("Hook ran", "hook", h.Manifest.Name, "event", ev.Type)
	}
}
