package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsTasksWithoutReentry(t *testing.T) {
	loop := NewLoop()

	var active, maxActive, runs int32
	slow := func() {
		n := atomic.AddInt32(&active, 1)
		if n > atomic.LoadInt32(&maxActive) {
			atomic.StoreInt32(&maxActive, n)
		}
		time.Sleep(3 * time.Millisecond)
		atomic.AddInt32(&runs, 1)
		atomic.AddInt32(&active, -1)
	}
	loop.Every("fast", time.Millisecond, slow)
	loop.Every("other", 2*time.Millisecond, slow)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	if atomic.LoadInt32(&runs) == 0 {
		t.Fatalf("Expected tasks to run")
	}
	if m := atomic.LoadInt32(&maxActive); m != 1 {
		t.Errorf("Expected at most one task at a time, saw %d", m)
	}
}

func TestLoopDoAndPost(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	value := 0
	if err := loop.Do(context.Background(), func() { value = 42 }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected Do to complete before returning, got %d", value)
	}

	posted := make(chan struct{})
	if !loop.Post(func() { close(posted) }) {
		t.Fatalf("Post rejected on running loop")
	}
	select {
	case <-posted:
	case <-time.After(time.Second):
		t.Fatalf("Posted call never ran")
	}
}

func TestLoopStopped(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(stopped)
	}()

	cancel()
	<-stopped

	if err := loop.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Expected ErrLoopStopped, got %v", err)
	}
	if loop.Post(func() {}) {
		t.Errorf("Expected Post to be rejected after stop")
	}
}

func TestPostAcceptedCallsRunDuringShutdown(t *testing.T) {
	for round := 0; round < 20; round++ {
		loop := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(stopped)
		}()

		var accepted, ran int32
		var posters sync.WaitGroup
		for i := 0; i < 32; i++ {
			posters.Add(1)
			go func() {
				defer posters.Done()
				for j := 0; j < 50; j++ {
					if loop.Post(func() { atomic.AddInt32(&ran, 1) }) {
						atomic.AddInt32(&accepted, 1)
					}
				}
			}()
		}

		time.Sleep(time.Millisecond)
		cancel()
		<-stopped
		posters.Wait()

		if a, r := atomic.LoadInt32(&accepted), atomic.LoadInt32(&ran); a != r {
			t.Fatalf("round %d: %d posts accepted but %d ran", round, a, r)
		}
	}
}

func TestDoAfterShutdownBegins(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	// fill the queue so late callers block on send
	blocker := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(stopped)
	}()
	if !loop.Post(func() { <-blocker }) {
		t.Fatal("Post rejected on running loop")
	}
	for i := 0; i < cap(loop.calls); i++ {
		loop.Post(func() {})
	}

	results := make(chan error, 1)
	go func() {
		results <- loop.Do(context.Background(), func() {})
	}()

	cancel()
	close(blocker)
	<-stopped

	select {
	case err := <-results:
		if err != nil && !errors.Is(err, ErrLoopStopped) {
			t.Errorf("Unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do blocked after the loop stopped")
	}
}

func TestEveryIgnoresBadRegistrations(t *testing.T) {
	loop := NewLoop()
	loop.Every("zero", 0, func() {})
	loop.Every("ok", time.Second, func() {})

	names := loop.Tasks()
	if len(names) != 1 || names[0] != "ok" {
		t.Errorf("Unexpected tasks: %v", names)
	}
}
