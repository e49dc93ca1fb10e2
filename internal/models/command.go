package models

// StateCommand is the body of a mode change request, over REST or MQTT.
type StateCommand struct {
	State *string `json:"state"`
}

// DriveCommand is the body of a manual forward/backward request. Pointers
// let handlers tell a missing field from a zero value.
type DriveCommand struct {
	Speed    *int  `json:"speed"`
	TurnRate *int  `json:"turnrate"`
	Smooth   *bool `json:"smooth"`
}

// Missing names the first absent field, or "" when all are present.
func (d DriveCommand) Missing() string {
	switch {
	case d.Speed == nil:
		return "speed"
	case d.TurnRate == nil:
		return "turnrate"
	case d.Smooth == nil:
		return "smooth"
	}
	return ""
}

type LogLevelCommand struct {
	Level *string `json:"level"`
}
