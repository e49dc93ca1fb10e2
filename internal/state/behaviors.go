package state

import "mower-core/internal/utils"

type docked struct{ base }

func (s *docked) Enter() { s.stopAll() }

func (s *docked) Process() {
	if s.charging() && !s.fullyCharged() {
		s.sm.SetState(Charging)
	}
}

type launching struct {
	base
	ticks int
}

func (s *launching) Enter() {
	s.ticks = 0
	s.stopCutter(true)
	if s.res.Wheels != nil {
		s.res.Wheels.Backward(0, s.opts.LaunchSpeed, true)
	}
}

func (s *launching) Process() {
	if s.guardFlipped() {
		return
	}
	s.ticks++
	if s.ticks >= s.opts.LaunchTicks {
		s.sm.SetState(Mowing)
	}
}

func (s *launching) Exit() { s.stopWheels(false) }

type mowing struct{ base }

func (s *mowing) Enter() {
	if s.res.Cutter != nil {
		s.res.Cutter.Start()
	}
	if s.res.Wheels != nil {
		s.res.Wheels.Forward(0, s.opts.MowingSpeed, true)
	}
}

func (s *mowing) Process() {
	if s.guardFlipped() {
		return
	}
	if s.batteryLow() {
		utils.Logger.Infof("Battery low (%.2fV), heading back to dock", s.res.Battery.Voltage())
		s.sm.SetState(Docking)
	}
}

func (s *mowing) Exit() { s.stopCutter(false) }

type docking struct{ base }

func (s *docking) Enter() { s.stopCutter(false) }

func (s *docking) Process() {
	if s.guardFlipped() {
		return
	}
	if s.charging() {
		s.sm.SetState(Charging)
	}
}

func (s *docking) Exit() { s.stopWheels(false) }

type charging struct{ base }

func (s *charging) Enter() { s.stopAll() }

func (s *charging) Process() {
	if s.fullyCharged() {
		s.sm.SetState(Docked)
	}
}

type stuck struct{ base }

func (s *stuck) Enter()   { s.stopAll() }
func (s *stuck) Process() { s.stopWheels(false) }

type flipped struct{ base }

func (s *flipped) Enter() {
	utils.Logger.Warn("Mower is flipped, stopping cutter and wheels")
	s.stopCutter(true)
	s.stopWheels(true)
}

// Process keeps the motors off; leaving FLIPPED is a user decision.
func (s *flipped) Process() {
	s.stopCutter(true)
	s.stopWheels(true)
}

type paused struct{ base }

func (s *paused) Enter()   { s.stopAll() }
func (s *paused) Process() {}

type demo struct{ base }

func (s *demo) Enter() {
	s.stopCutter(true)
	if s.res.Wheels != nil {
		s.res.Wheels.Forward(0, s.opts.DemoSpeed, true)
	}
}

func (s *demo) Process() { s.guardFlipped() }

func (s *demo) Exit() { s.stopWheels(false) }

type manual struct{ base }

func (s *manual) Process()             { s.guardFlipped() }
func (s *manual) UserSelectable() bool { return false }
