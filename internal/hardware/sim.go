// Package hardware provides in-process stand-ins for the mower's drivers so
// the control loop runs on a host without any attached hardware. All types
// are owned by the control loop goroutine.
package hardware

import (
	"math/rand"
	"mower-core/internal/common/constants"
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
)

const (
	batteryEmptyVoltage = 11.0
	drainPerSecondIdle  = 0.0002
	drainPerSecondCut   = 0.002
	chargePerSecond     = 0.01

	wheelRampStep  = 10
	wheelMaxSpeed  = 100
	cutterRampStep = 25
)

// Battery simulates a lead pack that drains while cutting and charges while
// docked.
type Battery struct {
	clock interfaces.Clock
	low   float64
	full  float64

	voltage     float64
	charging    bool
	chargeStart uint32
	lastFull    int64
	lastCharge  int64
}

func NewBattery(clock interfaces.Clock, lowVoltage, fullVoltage float64) *Battery {
	return &Battery{
		clock:   clock,
		low:     lowVoltage,
		full:    fullVoltage,
		voltage: fullVoltage,
	}
}

func (b *Battery) Voltage() float64 { return round2(b.voltage) }

func (b *Battery) Level() string {
	switch {
	case b.voltage >= b.full:
		return constants.BatteryLevelFull
	case b.voltage >= b.low:
		return constants.BatteryLevelMedium
	case b.voltage > batteryEmptyVoltage:
		return constants.BatteryLevelLow
	default:
		return constants.BatteryLevelEmpty
	}
}

func (b *Battery) IsCharging() bool           { return b.charging }
func (b *Battery) IsFullyCharged() bool       { return b.voltage >= b.full }
func (b *Battery) LastFullyChargeTime() int64 { return b.lastFull }
func (b *Battery) LastChargeDuration() int64  { return b.lastCharge }

// SetVoltage overrides the pack voltage.
func (b *Battery) SetVoltage(v float64) { b.voltage = v }

// Step advances the pack by seconds. onDock reports whether the charger is
// connected; cutting selects the heavier drain.
func (b *Battery) Step(seconds float64, onDock, cutting bool) {
	now := b.uptime()

	if onDock && !b.IsFullyCharged() {
		if !b.charging {
			b.charging = true
			b.chargeStart = now
		}
		b.voltage += chargePerSecond * seconds
		if b.voltage >= b.full {
			b.voltage = b.full
			b.charging = false
			b.lastFull = int64(now)
			b.lastCharge = int64(now - b.chargeStart)
		}
		return
	}

	b.charging = false
	if onDock {
		return
	}

	drain := drainPerSecondIdle
	if cutting {
		drain = drainPerSecondCut
	}
	b.voltage -= drain * seconds
	if b.voltage < batteryEmptyVoltage {
		b.voltage = batteryEmptyVoltage
	}
}

func (b *Battery) uptime() uint32 {
	if b.clock == nil {
		return 0
	}
	return b.clock.Uptime()
}

// Cutter spins up gradually and reports a load proportional to speed.
type Cutter struct {
	speed  int
	target int
}

func NewCutter() *Cutter { return &Cutter{} }

func (c *Cutter) Load() int       { return c.speed / 2 }
func (c *Cutter) IsCutting() bool { return c.target > 0 }
func (c *Cutter) Start()          { c.target = 100 }

func (c *Cutter) Stop(immediate bool) {
	c.target = 0
	if immediate {
		c.speed = 0
	}
}

// Step ramps the blade towards its target speed.
func (c *Cutter) Step() {
	c.speed = ramp(c.speed, c.target, cutterRampStep)
}

// Wheels mixes speed and turn rate into per-wheel speeds in -100..100.
// Smooth commands are approached a step at a time on Step.
type Wheels struct {
	left, right             int
	targetLeft, targetRight int
}

func NewWheels() *Wheels { return &Wheels{} }

func (w *Wheels) Status() models.WheelStatus {
	return models.WheelStatus{LeftWheelSpeed: w.left, RightWheelSpeed: w.right}
}

func (w *Wheels) Forward(turnRate, speed int, smooth bool) {
	w.drive(clamp(speed+turnRate), clamp(speed-turnRate), smooth)
}

func (w *Wheels) Backward(turnRate, speed int, smooth bool) {
	w.drive(-clamp(speed-turnRate), -clamp(speed+turnRate), smooth)
}

func (w *Wheels) Stop(immediate bool) {
	w.drive(0, 0, !immediate)
}

func (w *Wheels) drive(left, right int, smooth bool) {
	w.targetLeft, w.targetRight = left, right
	if !smooth {
		w.left, w.right = left, right
	}
}

func (w *Wheels) Step() {
	w.left = ramp(w.left, w.targetLeft, wheelRampStep)
	w.right = ramp(w.right, w.targetRight, wheelRampStep)
}

// Radio reports a slowly wandering signal strength.
type Radio struct {
	rssi      int
	connected bool
	rnd       *rand.Rand
}

func NewRadio(seed int64) *Radio {
	return &Radio{rssi: -55, connected: true, rnd: rand.New(rand.NewSource(seed))}
}

func (r *Radio) RSSI() (int, error) {
	if !r.connected {
		return 0, ErrNotAssociated
	}
	return r.rssi, nil
}

func (r *Radio) SetConnected(connected bool) { r.connected = connected }

func (r *Radio) Step() {
	r.rssi += r.rnd.Intn(3) - 1
	if r.rssi > -30 {
		r.rssi = -30
	}
	if r.rssi < -90 {
		r.rssi = -90
	}
}

func ramp(current, target, step int) int {
	switch {
	case current < target:
		current += step
		if current > target {
			current = target
		}
	case current > target:
		current -= step
		if current < target {
			current = target
		}
	}
	return current
}

func clamp(v int) int {
	if v > wheelMaxSpeed {
		return wheelMaxSpeed
	}
	if v < -wheelMaxSpeed {
		return -wheelMaxSpeed
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
