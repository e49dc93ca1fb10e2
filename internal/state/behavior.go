package state

import (
	"mower-core/internal/interfaces"
)

// Behavior is the per-mode logic. Enter and Exit run inside a transition and
// must not call SetState; Process runs on every control tick and may. All
// three must return promptly.
type Behavior interface {
	Mode() Mode
	Name() string
	Enter()
	Process()
	Exit()
	// UserSelectable reports whether a user may request this mode by name.
	UserSelectable() bool
}

// Transitioner is the part of the controller behaviors may drive.
type Transitioner interface {
	SetState(mode Mode)
}

// Options tunes the built-in behaviors.
type Options struct {
	BatteryLowVoltage float64
	LaunchTicks       int
	LaunchSpeed       int
	MowingSpeed       int
	DemoSpeed         int
}

func DefaultOptions() Options {
	return Options{
		BatteryLowVoltage: 11.8,
		LaunchTicks:       30,
		LaunchSpeed:       40,
		MowingSpeed:       80,
		DemoSpeed:         30,
	}
}

type base struct {
	mode Mode
	sm   Transitioner
	res  interfaces.Resources
	opts Options
}

func (b *base) Mode() Mode           { return b.mode }
func (b *base) Name() string         { return b.mode.String() }
func (b *base) Enter()               {}
func (b *base) Process()             {}
func (b *base) Exit()                {}
func (b *base) UserSelectable() bool { return true }

func (b *base) stopCutter(immediate bool) {
	if b.res.Cutter != nil {
		b.res.Cutter.Stop(immediate)
	}
}

func (b *base) stopWheels(immediate bool) {
	if b.res.Wheels != nil {
		b.res.Wheels.Stop(immediate)
	}
}

func (b *base) stopAll() {
	b.stopCutter(true)
	b.stopWheels(false)
}

func (b *base) flipped() bool {
	return b.res.Orientation != nil && b.res.Orientation.IsFlipped()
}

func (b *base) charging() bool {
	return b.res.Battery != nil && b.res.Battery.IsCharging()
}

func (b *base) fullyCharged() bool {
	return b.res.Battery != nil && b.res.Battery.IsFullyCharged()
}

func (b *base) batteryLow() bool {
	return b.res.Battery != nil && b.res.Battery.Voltage() < b.opts.BatteryLowVoltage
}

// guardFlipped moves to FLIPPED when the orientation says so.
func (b *base) guardFlipped() bool {
	if b.flipped() {
		b.sm.SetState(Flipped)
		return true
	}
	return false
}
