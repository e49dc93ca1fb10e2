package status

import (
	"errors"
	"fmt"
	"mower-core/internal/models"
	"mower-core/internal/utils"
	"sync"
	"sync/atomic"
)

// ErrSinkClosed is returned by AsyncSink.Push after Close.
var ErrSinkClosed = errors.New("status sink closed")

// Sink receives full status snapshots.
type Sink interface {
	Push(s models.Status) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(s models.Status) error

func (f SinkFunc) Push(s models.Status) error { return f(s) }

// FanOut pushes to every child. A failing child does not stop the others;
// the first error is returned.
type FanOut struct {
	names []string
	sinks []Sink
}

func NewFanOut() *FanOut {
	return &FanOut{}
}

// Add appends a named child. Nil sinks are skipped.
func (f *FanOut) Add(name string, sink Sink) *FanOut {
	if sink != nil {
		f.names = append(f.names, name)
		f.sinks = append(f.sinks, sink)
	}
	return f
}

func (f *FanOut) Len() int { return len(f.sinks) }

func (f *FanOut) Push(s models.Status) error {
	var first error
	for i, sink := range f.sinks {
		if err := sink.Push(s); err != nil {
			utils.Logger.Warnf("status sink %s failed: %v", f.names[i], err)
			if first == nil {
				first = fmt.Errorf("%s: %w", f.names[i], err)
			}
		}
	}
	return first
}

// AsyncSink hands snapshots to a worker goroutine so the caller never waits
// for delivery. When the queue is full the new snapshot is dropped.
type AsyncSink struct {
	next    Sink
	queue   chan models.Status
	dropped uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsyncSink(next Sink, capacity int) *AsyncSink {
	if capacity < 1 {
		capacity = 1
	}
	a := &AsyncSink{
		next:  next,
		queue: make(chan models.Status, capacity),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncSink) run() {
	defer close(a.done)
	for s := range a.queue {
		if err := a.next.Push(s); err != nil {
			utils.Logger.Debugf("async status push failed: %v", err)
		}
	}
}

// Push never blocks.
func (a *AsyncSink) Push(s models.Status) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrSinkClosed
	}
	select {
	case a.queue <- s:
	default:
		atomic.AddUint64(&a.dropped, 1)
	}
	return nil
}

// Dropped counts snapshots discarded because the queue was full.
func (a *AsyncSink) Dropped() uint64 {
	return atomic.LoadUint64(&a.dropped)
}

// Close stops accepting snapshots and waits for queued ones to be delivered.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
