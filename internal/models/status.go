package models

import "time"

// Status is the full set of externally reported live fields. JSON keys are
// part of the push contract.
type Status struct {
	State               string  `json:"state"`
	BatteryVoltage      float64 `json:"batteryVoltage"`
	BatteryLevel        string  `json:"batteryLevel"`
	IsCharging          bool    `json:"isCharging"`
	LastFullyChargeTime int64   `json:"lastFullyChargeTime"`
	LastChargeDuration  int64   `json:"lastChargeDuration"`
	CutterLoad          int     `json:"cutterLoad"`
	CutterRotating      bool    `json:"cutterRotating"`
	Uptime              uint32  `json:"uptime"`
	WifiSignal          int     `json:"wifiSignal"`
	LeftWheelSpd        int     `json:"leftWheelSpd"`
	RightWheelSpd       int     `json:"rightWheelSpd"`
	Pitch               int     `json:"pitch"`
	Roll                int     `json:"roll"`
	Heading             int     `json:"heading"`
}

// WheelStatus is what the wheel controller reports.
type WheelStatus struct {
	LeftWheelSpeed  int `json:"leftWheelSpeed"`
	RightWheelSpeed int `json:"rightWheelSpeed"`
}

// BatterySample is one entry of the battery voltage history.
type BatterySample struct {
	Time           int64   `json:"time"`
	BatteryVoltage float64 `json:"batteryVoltage"`
}

// TelemetryRecord is the archived form of a throttled status push. It keeps
// every snapshot field.
type TelemetryRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	MowerID             string    `gorm:"index;size:64" json:"mowerId"`
	State               string    `gorm:"size:16" json:"state"`
	BatteryVoltage      float64   `json:"batteryVoltage"`
	BatteryLevel        string    `gorm:"size:16" json:"batteryLevel"`
	IsCharging          bool      `json:"isCharging"`
	LastFullyChargeTime int64     `json:"lastFullyChargeTime"`
	LastChargeDuration  int64     `json:"lastChargeDuration"`
	CutterLoad          int       `json:"cutterLoad"`
	CutterRotating      bool      `json:"cutterRotating"`
	Uptime              uint32    `json:"uptime"`
	WifiSignal          int       `json:"wifiSignal"`
	LeftWheelSpd        int       `json:"leftWheelSpd"`
	RightWheelSpd       int       `json:"rightWheelSpd"`
	Pitch               int       `json:"pitch"`
	Roll                int       `json:"roll"`
	Heading             int       `json:"heading"`
	CreatedAt           time.Time `gorm:"index" json:"createdAt"`
}

func (TelemetryRecord) TableName() string {
	return "telemetry_records"
}

func NewTelemetryRecord(mowerID string, s Status) *TelemetryRecord {
	return &TelemetryRecord{
		MowerID:             mowerID,
		State:               s.State,
		BatteryVoltage:      s.BatteryVoltage,
		BatteryLevel:        s.BatteryLevel,
		IsCharging:          s.IsCharging,
		LastFullyChargeTime: s.LastFullyChargeTime,
		LastChargeDuration:  s.LastChargeDuration,
		CutterLoad:          s.CutterLoad,
		CutterRotating:      s.CutterRotating,
		Uptime:              s.Uptime,
		WifiSignal:          s.WifiSignal,
		LeftWheelSpd:        s.LeftWheelSpd,
		RightWheelSpd:       s.RightWheelSpd,
		Pitch:               s.Pitch,
		Roll:                s.Roll,
		Heading:             s.Heading,
	}
}
