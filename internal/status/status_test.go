package status

import (
	"errors"
	"mower-core/internal/models"
	"sync"
	"testing"
	"time"
)

type fakeMode struct{ name string }

func (m *fakeMode) ModeName() string { return m.name }

type fakeBattery struct {
	voltage  float64
	level    string
	charging bool
}

func (b *fakeBattery) Voltage() float64           { return b.voltage }
func (b *fakeBattery) Level() string              { return b.level }
func (b *fakeBattery) IsCharging() bool           { return b.charging }
func (b *fakeBattery) IsFullyCharged() bool       { return false }
func (b *fakeBattery) LastFullyChargeTime() int64 { return 0 }
func (b *fakeBattery) LastChargeDuration() int64  { return 0 }

type fakeRadio struct {
	rssi int
	err  error
}

func (r *fakeRadio) RSSI() (int, error) { return r.rssi, r.err }

type fakeClock struct{ now uint32 }

func (c *fakeClock) Uptime() uint32 { return c.now }

type recordingSink struct {
	mu     sync.Mutex
	pushed []models.Status
	err    error
}

func (r *recordingSink) Push(s models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, s)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushed)
}

type fixture struct {
	mode      *fakeMode
	battery   *fakeBattery
	radio     *fakeRadio
	clock     *fakeClock
	realtime  *recordingSink
	throttled *recordingSink
	agg       *Aggregator
}

func newFixture() *fixture {
	f := &fixture{
		mode:      &fakeMode{name: "DOCKED"},
		battery:   &fakeBattery{voltage: 12.4, level: "FULL"},
		radio:     &fakeRadio{rssi: -60},
		clock:     &fakeClock{now: 100},
		realtime:  &recordingSink{},
		throttled: &recordingSink{},
	}
	f.agg = NewAggregator(Sources{
		Mode:    f.mode,
		Battery: f.battery,
		Radio:   f.radio,
		Clock:   f.clock,
	}, f.realtime, f.throttled, 10)
	return f
}

func TestPollTickFirstPollEmits(t *testing.T) {
	f := newFixture()

	if !f.agg.PollTick() {
		t.Fatal("Expected first poll to detect a change")
	}
	if f.realtime.count() != 1 || f.throttled.count() != 1 {
		t.Fatalf("Expected one push per sink, got realtime=%d throttled=%d", f.realtime.count(), f.throttled.count())
	}

	got := f.realtime.pushed[0]
	if got.State != "DOCKED" || got.BatteryVoltage != 12.4 || got.WifiSignal != -60 || got.Uptime != 100 {
		t.Errorf("Unexpected snapshot %+v", got)
	}
}

func TestPollTickNoChangeNoEmit(t *testing.T) {
	f := newFixture()
	f.agg.PollTick()

	if f.agg.PollTick() {
		t.Error("Expected no change on identical poll")
	}
	if f.realtime.count() != 1 {
		t.Errorf("Expected no extra realtime push, got %d", f.realtime.count())
	}
}

func TestPollTickUptimeOnlyChangeIsSilent(t *testing.T) {
	f := newFixture()
	f.agg.PollTick()

	f.clock.now = 250
	if f.agg.PollTick() {
		t.Error("Uptime alone must not count as a change")
	}
	if f.realtime.count() != 1 || f.throttled.count() != 1 {
		t.Errorf("Expected no pushes for uptime change")
	}
	if f.agg.Current().Uptime != 250 {
		t.Errorf("Expected uptime to be refreshed, got %d", f.agg.Current().Uptime)
	}
}

func TestPollTickThrottle(t *testing.T) {
	f := newFixture()
	f.agg.PollTick() // t=100, throttled push #1

	f.clock.now = 105
	f.battery.voltage = 12.3
	f.agg.PollTick()
	if f.realtime.count() != 2 {
		t.Errorf("Expected realtime push on change, got %d", f.realtime.count())
	}
	if f.throttled.count() != 1 {
		t.Errorf("Expected throttled push suppressed inside window, got %d", f.throttled.count())
	}

	f.clock.now = 110
	f.battery.voltage = 12.2
	f.agg.PollTick()
	if f.throttled.count() != 2 {
		t.Errorf("Expected throttled push once interval elapsed, got %d", f.throttled.count())
	}
	if f.throttled.pushed[1].BatteryVoltage != 12.2 {
		t.Errorf("Expected latest snapshot in throttled push, got %v", f.throttled.pushed[1].BatteryVoltage)
	}
}

func TestPollTickDegradedSources(t *testing.T) {
	f := newFixture()
	f.radio.err = errors.New("not associated")

	f.agg.PollTick()
	if got := f.agg.Current().WifiSignal; got != 0 {
		t.Errorf("Expected 0 wifi on radio error, got %d", got)
	}

	empty := NewAggregator(Sources{}, nil, nil, 10)
	if empty.PollTick() {
		t.Error("Expected all-zero snapshot to match the initial one")
	}
	if empty.Current() != (models.Status{}) {
		t.Errorf("Expected zero snapshot without sources, got %+v", empty.Current())
	}
}

func TestFanOutContinuesAfterFailure(t *testing.T) {
	bad := &recordingSink{err: errors.New("broker down")}
	good := &recordingSink{}

	fan := NewFanOut().Add("bad", bad).Add("none", nil).Add("good", good)
	if fan.Len() != 2 {
		t.Fatalf("Expected nil sink to be skipped, got %d sinks", fan.Len())
	}

	if err := fan.Push(models.Status{State: "MOWING"}); err == nil {
		t.Error("Expected first error to be returned")
	}
	if good.count() != 1 {
		t.Error("Expected later sink to still receive the snapshot")
	}
}

type blockingSink struct {
	release chan struct{}
	got     chan models.Status
}

func (b *blockingSink) Push(s models.Status) error {
	<-b.release
	b.got <- s
	return nil
}

func TestAsyncSinkDropsWhenFull(t *testing.T) {
	next := &blockingSink{release: make(chan struct{}), got: make(chan models.Status, 10)}
	async := NewAsyncSink(next, 1)

	// worker takes the first, the second fills the queue, the rest drop
	for i := 0; i < 5; i++ {
		start := time.Now()
		if err := async.Push(models.Status{Uptime: uint32(i)}); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Fatal("Push blocked")
		}
		if i == 0 {
			time.Sleep(20 * time.Millisecond)
		}
	}

	if async.Dropped() == 0 {
		t.Error("Expected dropped snapshots")
	}

	close(next.release)
	async.Close()

	if len(next.got) == 0 {
		t.Error("Expected queued snapshots to be delivered before Close returns")
	}
	if err := async.Push(models.Status{}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Expected ErrSinkClosed after Close, got %v", err)
	}
}

type fakeScheduler struct {
	names []string
	fns   []func()
}

func (s *fakeScheduler) Every(name string, _ time.Duration, fn func()) {
	s.names = append(s.names, name)
	s.fns = append(s.fns, fn)
}

func TestAggregatorStart(t *testing.T) {
	f := newFixture()
	sched := &fakeScheduler{}
	f.agg.Start(sched, 400*time.Millisecond)

	if len(sched.names) != 1 || sched.names[0] != "status-poll" {
		t.Fatalf("Expected status-poll registration, got %v", sched.names)
	}
	sched.fns[0]()
	if f.realtime.count() != 1 {
		t.Error("Expected scheduled callback to poll")
	}
}
