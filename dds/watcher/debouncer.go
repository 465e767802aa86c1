package watcher

import (
	"sync"
	"time"
)

// Batch is a run of events coalesced under one root
type Batch struct {
	Root   string
	Events []Event
}

type pendingBatch struct {
	events []Event
	first  time.Time
	timer  *time.Timer
}

// Debouncer coalesces events per root. A root's batch is emitted once no new
// event arrives for the delay, or once maxDelay has passed since its first event.
type Debouncer struct {
	delay    time.Duration
	maxDelay time.Duration
	out      chan Batch
	done     chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingBatch
	closed  bool
}

// NewDebouncer creates a new debouncer
func NewDebouncer(delay, maxDelay time.Duration, queueCapacity int) *Debouncer {
	if maxDelay < delay {
		maxDelay = delay
	}
	return &Debouncer{
		delay:    delay,
		maxDelay: maxDelay,
		out:      make(chan Batch, queueCapacity),
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingBatch),
	}
}

// Add queues event under event.Root
func (d *Debouncer) Add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	key := event.Root
	batch, exists := d.pending[key]
	if !exists {
		batch = &pendingBatch{first: time.Now()}
		d.pending[key] = batch
	}
	batch.events = append(batch.events, event)

	wait := d.delay
	if remaining := d.maxDelay - time.Since(batch.first); remaining < wait {
		wait = max(remaining, 0)
	}

	if batch.timer != nil {
		batch.timer.Stop()
	}
	batch.timer = time.AfterFunc(wait, func() {
		d.emit(key, batch)
	})
}

// Batches returns the debounced batches. The channel is never closed; readers
// stop on Done.
func (d *Debouncer) Batches() <-chan Batch {
	return d.out
}

// Done is closed by Close.
func (d *Debouncer) Done() <-chan struct{} {
	return d.done
}

// Pending returns how many roots have a batch waiting.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) emit(key string, batch *pendingBatch) {
	d.mu.Lock()
	if d.pending[key] != batch {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	select {
	case d.out <- Batch{Root: key, Events: batch.events}:
	case <-d.done:
	}
}

// Close stops the debouncer and drops pending batches
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	for key, batch := range d.pending {
		if batch.timer != nil {
			batch.timer.Stop()
		}
		delete(d.pending, key)
	}
	close(d.done)
}
