// Package scheduler runs every periodic task and every external callback on
// one goroutine, so core state never needs locking and no task re-enters.
package scheduler

import (
	"context"
	"errors"
	"mower-core/internal/utils"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has begun shutting down.
var ErrLoopStopped = errors.New("control loop stopped")

type task struct {
	name     string
	interval time.Duration
	fn       func()
	overrun  time.Duration
}

// Loop is the single logical control context.
type Loop struct {
	mu      sync.Mutex
	tasks   []*task
	running bool

	// senders hold inflight while they may still hand a call over; once
	// stopped is set no new sender starts and drain waits for the rest
	stopped  bool
	inflight sync.WaitGroup
	stopping chan struct{}

	calls chan func()
	done  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		stopping: make(chan struct{}),
		calls:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Every registers fn to run every interval. Tasks must be registered before
// Run; later registrations are ignored.
func (l *Loop) Every(name string, interval time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		utils.Logger.Warnf("task %s registered after loop start, ignored", name)
		return
	}
	if interval <= 0 {
		utils.Logger.Warnf("task %s has non-positive interval %v, ignored", name, interval)
		return
	}
	l.tasks = append(l.tasks, &task{name: name, interval: interval, fn: fn, overrun: interval})
}

// Post queues fn to run on the loop without waiting for it. A true result
// means fn runs, at the latest while the loop drains on shutdown.
func (l *Loop) Post(fn func()) bool {
	return l.enqueue(context.Background(), fn) == nil
}

// Do runs fn on the loop and waits until it has returned.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	if err := l.enqueue(ctx, wrapped); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// every accepted call runs before done closes
		<-finished
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) enqueue(ctx context.Context, fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.inflight.Add(1)
	l.mu.Unlock()
	defer l.inflight.Done()

	select {
	case l.calls <- fn:
		return nil
	case <-l.stopping:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	close(l.stopping)
	l.inflight.Wait()
	l.drain()
	close(l.done)
}

// Run blocks until ctx is cancelled. Queued calls still pending at shutdown
// are executed before Run returns.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	l.running = true
	tasks := l.tasks
	l.mu.Unlock()

	type firing struct {
		t    *task
		tick *time.Ticker
	}
	firings := make([]firing, len(tasks))
	for i, t := range tasks {
		firings[i] = firing{t: t, tick: time.NewTicker(t.interval)}
	}
	defer func() {
		for _, f := range firings {
			f.tick.Stop()
		}
	}()

	// one forwarding goroutine per ticker keeps the select static; each
	// pushes a token and the loop goroutine runs the task itself
	due := make(chan *task, len(tasks))
	stopFwd := make(chan struct{})
	var fwd sync.WaitGroup
	for _, f := range firings {
		fwd.Add(1)
		go func(f firing) {
			defer fwd.Done()
			for {
				select {
				case <-f.tick.C:
					select {
					case due <- f.t:
					default:
						// previous firing of some task still queued; drop this one
					}
				case <-stopFwd:
					return
				}
			}
		}(f)
	}

	utils.Logger.Infof("Control loop started with %d periodic tasks", len(tasks))

	for {
		select {
		case <-ctx.Done():
			close(stopFwd)
			fwd.Wait()
			l.shutdown()
			utils.Logger.Info("Control loop stopped")
			return
		case t := <-due:
			l.runTask(t)
		case fn := <-l.calls:
			fn()
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.calls:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) runTask(t *task) {
	start := time.Now()
	t.fn()
	if elapsed := time.Since(start); elapsed > t.overrun {
		utils.Logger.Warnf("task %s overran its %v cadence (%v)", t.name, t.interval, elapsed)
	}
}

// Tasks lists registered task names in registration order.
func (l *Loop) Tasks() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		names[i] = t.name
	}
	return names
}
