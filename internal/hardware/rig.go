package hardware

import (
	"mower-core/internal/interfaces"
	"time"
)

// Scheduler registers a periodic callback on the control loop.
type Scheduler interface {
	Every(name string, interval time.Duration, fn func())
}

// Rig bundles one of every simulated part and advances them together.
type Rig struct {
	Battery *Battery
	Cutter  *Cutter
	Wheels  *Wheels
	Radio   *Radio
	IMU     *IMU

	mode interfaces.ModeReporter
}

func NewRig(clock interfaces.Clock, lowVoltage, fullVoltage float64) *Rig {
	return &Rig{
		Battery: NewBattery(clock, lowVoltage, fullVoltage),
		Cutter:  NewCutter(),
		Wheels:  NewWheels(),
		Radio:   NewRadio(time.Now().UnixNano()),
		IMU:     NewIMU(),
	}
}

// AttachMode lets the rig place the mower on the charger while it is in a
// dock-side mode.
func (r *Rig) AttachMode(mode interfaces.ModeReporter) {
	r.mode = mode
}

func (r *Rig) Resources(orientation interfaces.Orientation) interfaces.Resources {
	return interfaces.Resources{
		Battery:     r.Battery,
		Cutter:      r.Cutter,
		Wheels:      r.Wheels,
		Orientation: orientation,
	}
}

func (r *Rig) Start(sched Scheduler, interval time.Duration) {
	sched.Every("sim-step", interval, func() { r.Step(interval.Seconds()) })
}

// Step advances every part by seconds.
func (r *Rig) Step(seconds float64) {
	r.Cutter.Step()
	r.Wheels.Step()
	r.Radio.Step()
	r.Battery.Step(seconds, r.onDock(), r.Cutter.IsCutting())
}

func (r *Rig) onDock() bool {
	if r.mode == nil {
		return false
	}
	switch r.mode.ModeName() {
	case "DOCKED", "DOCKING", "CHARGING":
		return true
	}
	return false
}
