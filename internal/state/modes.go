package state

// Mode identifies one operating mode of the mower.
type Mode int

const (
	Docked Mode = iota
	Launching
	Mowing
	Docking
	Charging
	Stuck
	Flipped
	Paused
	Demo
	// Manual is entered only by manual drive and cutter commands.
	Manual

	modeCount
)

var modeNames = [modeCount]string{
	Docked:    "DOCKED",
	Launching: "LAUNCHING",
	Mowing:    "MOWING",
	Docking:   "DOCKING",
	Charging:  "CHARGING",
	Stuck:     "STUCK",
	Flipped:   "FLIPPED",
	Paused:    "PAUSED",
	Demo:      "DEMO",
	Manual:    "MANUAL",
}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return "UNKNOWN"
	}
	return modeNames[m]
}

func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// AllModes returns every mode in declaration order.
func AllModes() []Mode {
	modes := make([]Mode, 0, modeCount)
	for m := Mode(0); m < modeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}

// ParseMode resolves an exact mode name, MANUAL included.
func ParseMode(name string) (Mode, bool) {
	for m, n := range modeNames {
		if n == name {
			return Mode(m), true
		}
	}
	return 0, false
}
