package imu

import "time"

// Device is the raw accelerometer/magnetometer as the estimator needs it.
// Reads are poll-based: callers check the *Available flag and never wait.
type Device interface {
	Begin() error
	Calibrate() error
	AccelAvailable() bool
	MagAvailable() bool
	ReadAccel() (x, y, z int16, err error)
	ReadMag() (x, y, z int16, err error)
}

// Scheduler registers a periodic callback on the control loop.
type Scheduler interface {
	Every(name string, interval time.Duration, fn func())
}
