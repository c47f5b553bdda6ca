package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// sendTimeout bounds one sender delivery.
const sendTimeout = 10 * time.Second

// Dispatcher routes events to registered senders.
type Dispatcher struct {
	senders []Sender
	mu      sync.RWMutex
	wg      sync.WaitGroup
	async   bool
	logger  *slog.Logger
}

// Options configures a Dispatcher.
type Options struct {
	// Async delivers each event in its own goroutine. Call Wait before
	// exiting to drain in-flight sends.
	Async  bool
	Logger *slog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		senders: make([]Sender, 0),
		async:   opts.Async,
		logger:  logger,
	}
}

// Register adds a sender to the dispatcher.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Unregister removes a sender from the dispatcher by name.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	filtered := make([]Sender, 0, len(d.senders))
	for _, s := range d.senders {
		if s.Name() != name {
			filtered = append(filtered, s)
		}
	}
	d.senders = filtered
}

// Dispatch sends an event to all registered senders.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()

	if len(senders) == 0 {
		return
	}

	if d.async {
		for _, sender := range senders {
			d.wg.Add(1)

			go func() {
				defer d.wg.Done()
				d.sendWithRecover(ctx, sender, event)
			}()
		}

		return
	}

	for _, sender := range senders {
		d.sendWithRecover(ctx, sender, event)
	}
}

// Wait blocks until all in-flight async sends have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// sendWithRecover sends an event and recovers from sender panics, so a
// misbehaving sender cannot take down the pipeline around it.
func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sender panicked", "sender", sender.Name(), "panic", r)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, event); err != nil {
		d.logger.Warn("sender failed", "sender", sender.Name(), "error", err)
	}
}

// HasSenders returns true if any senders are registered.
func (d *Dispatcher) HasSenders() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.senders) > 0
}

// Senders returns a copy of the registered senders.
func (d *Dispatcher) Senders() []Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Sender, len(d.senders))
	copy(result, d.senders)

	return result
}
