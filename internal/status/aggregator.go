// Package status keeps the live status snapshot and decides when to push it.
package status

import (
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
	"mower-core/internal/utils"
	"time"
)

// Sources are the subsystems the aggregator polls. Any of them may be nil;
// a missing or failing source yields the field's zero value.
type Sources struct {
	Mode        interfaces.ModeReporter
	Battery     interfaces.Battery
	Cutter      interfaces.Cutter
	Wheels      interfaces.WheelController
	Radio       interfaces.Radio
	Orientation interfaces.Orientation
	Clock       interfaces.Clock
}

// Scheduler registers a periodic callback on the control loop.
type Scheduler interface {
	Every(name string, interval time.Duration, fn func())
}

// Aggregator owns the current snapshot. PollTick must not run concurrently
// with itself.
type Aggregator struct {
	src       Sources
	current   models.Status
	realtime  Sink
	throttled Sink
	throttle  *utils.Throttle
}

// NewAggregator wires the realtime and throttled boundaries. Either may be nil.
func NewAggregator(src Sources, realtime, throttled Sink, throttleSeconds uint32) *Aggregator {
	return &Aggregator{
		src:       src,
		realtime:  realtime,
		throttled: throttled,
		throttle:  utils.NewThrottle(throttleSeconds),
	}
}

// Start registers PollTick on the scheduler.
func (a *Aggregator) Start(sched Scheduler, interval time.Duration) {
	sched.Every("status-poll", interval, func() { a.PollTick() })
}

// PollTick refreshes every field and pushes when anything but uptime moved.
// It reports whether a change was detected.
func (a *Aggregator) PollTick() bool {
	next := a.collect()
	next.Uptime = 0
	prev := a.current
	prev.Uptime = 0
	changed := next != prev

	next.Uptime = a.uptime()
	a.current = next

	if !changed {
		return false
	}

	if a.realtime != nil {
		if err := a.realtime.Push(a.current); err != nil {
			utils.Logger.Debugf("realtime status push failed: %v", err)
		}
	}

	if a.throttled != nil && a.throttle.Allow(a.current.Uptime) {
		if err := a.throttled.Push(a.current); err != nil {
			utils.Logger.Debugf("throttled status push failed: %v", err)
		}
	}

	return true
}

// Current returns a copy of the snapshot.
func (a *Aggregator) Current() models.Status {
	return a.current
}

func (a *Aggregator) collect() models.Status {
	var s models.Status

	if a.src.Mode != nil {
		s.State = a.src.Mode.ModeName()
	}

	if b := a.src.Battery; b != nil {
		s.BatteryVoltage = b.Voltage()
		s.BatteryLevel = b.Level()
		s.IsCharging = b.IsCharging()
		s.LastFullyChargeTime = b.LastFullyChargeTime()
		s.LastChargeDuration = b.LastChargeDuration()
	}

	if c := a.src.Cutter; c != nil {
		s.CutterLoad = c.Load()
		s.CutterRotating = c.IsCutting()
	}

	if w := a.src.Wheels; w != nil {
		stat := w.Status()
		s.LeftWheelSpd = stat.LeftWheelSpeed
		s.RightWheelSpd = stat.RightWheelSpeed
	}

	if r := a.src.Radio; r != nil {
		if rssi, err := r.RSSI(); err == nil {
			s.WifiSignal = rssi
		}
	}

	if o := a.src.Orientation; o != nil {
		orient := o.Orientation()
		s.Pitch = orient.Pitch
		s.Roll = orient.Roll
		s.Heading = orient.Heading
	}

	return s
}

func (a *Aggregator) uptime() uint32 {
	if a.src.Clock == nil {
		return 0
	}
	return a.src.Clock.Uptime()
}
