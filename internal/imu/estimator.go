// Package imu turns raw accelerometer and magnetometer samples into a
// median-filtered pitch/roll/heading estimate.
package imu

import (
	"errors"
	"fmt"
	"math"
	"mower-core/internal/models"
	"mower-core/internal/utils"
	"sync"
	"time"
)

// ErrSensorUnavailable is returned by Start when the device does not respond.
var ErrSensorUnavailable = errors.New("orientation sensor unavailable")

// Options configures an Estimator.
type Options struct {
	MedianSamples  int     // window size, odd
	DeclinationDeg float64 // subtracted from the magnetic heading
	TiltAngleMax   float64 // degrees of pitch or roll considered flipped
	Interval       time.Duration
}

// Estimator owns the sample windows and the current Orientation. SampleTick
// must only be called from one goroutine at a time.
type Estimator struct {
	device Device
	opts   Options

	ax, ay, az window
	mx, my     window
	slot       int

	available bool

	mu      sync.RWMutex
	current models.Orientation
}

func NewEstimator(device Device, opts Options) *Estimator {
	if opts.MedianSamples < 1 {
		opts.MedianSamples = 1
	}
	n := opts.MedianSamples
	return &Estimator{
		device: device,
		opts:   opts,
		ax:     newWindow(n),
		ay:     newWindow(n),
		az:     newWindow(n),
		mx:     newWindow(n),
		my:     newWindow(n),
	}
}

// Start brings up the device, calibrates it, pre-fills the windows and
// registers SampleTick on the scheduler. A device that fails to begin
// leaves the estimator permanently unavailable.
func (e *Estimator) Start(sched Scheduler) error {
	if e.device == nil {
		utils.Logger.Error("No gyro/accelerometer/compass device configured")
		return ErrSensorUnavailable
	}
	if err := e.device.Begin(); err != nil {
		utils.Logger.Errorf("Failed to initialize gyro/accelerometer/compass, check connections: %v", err)
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}

	utils.Logger.Info("Gyro/accelerometer/compass init success")
	e.available = true

	if err := e.device.Calibrate(); err != nil {
		utils.Logger.Warnf("IMU calibration failed, continuing uncalibrated: %v", err)
	}

	for i := 0; i < e.opts.MedianSamples; i++ {
		e.SampleTick()
	}

	if sched != nil {
		sched.Every("imu-sample", e.opts.Interval, e.SampleTick)
	}
	return nil
}

// SampleTick reads whatever new data the device flags, writes it into the
// current slot and recomputes the estimate. An axis without new data keeps
// the old value in that slot; the slot advances regardless.
func (e *Estimator) SampleTick() {
	if !e.available {
		return
	}

	if e.device.AccelAvailable() {
		if x, y, z, err := e.device.ReadAccel(); err == nil {
			e.ax.set(e.slot, x)
			e.ay.set(e.slot, y)
			e.az.set(e.slot, z)
		} else {
			utils.Logger.Debugf("accelerometer read failed: %v", err)
		}
	}
	if e.device.MagAvailable() {
		if x, y, _, err := e.device.ReadMag(); err == nil {
			e.mx.set(e.slot, x)
			e.my.set(e.slot, y)
		} else {
			utils.Logger.Debugf("magnetometer read failed: %v", err)
		}
	}

	e.slot = (e.slot + 1) % e.opts.MedianSamples

	o := Compute(
		e.ax.median(), e.ay.median(), e.az.median(),
		e.mx.median(), e.my.median(),
		e.opts.DeclinationDeg,
	)

	e.mu.Lock()
	e.current = o
	e.mu.Unlock()
}

// Compute derives the rounded orientation from median axis values.
func Compute(ax, ay, az, mx, my int16, declinationDeg float64) models.Orientation {
	fx, fy, fz := float64(ax), float64(ay), float64(az)
	nmx, nmy := -float64(mx), -float64(my)

	roll := math.Atan2(fy, fz)
	pitch := math.Atan2(-fx, math.Sqrt(fy*fy+fz*fz))

	var heading float64
	if nmy == 0 {
		if nmx < 0 {
			heading = math.Pi
		}
	} else {
		heading = math.Atan2(nmx, nmy)
	}

	heading *= 180 / math.Pi
	pitch *= 180 / math.Pi
	roll *= 180 / math.Pi

	heading -= declinationDeg
	if heading < 0 {
		heading += 360
	}

	h := int(math.Round(heading))
	if h >= 360 {
		h -= 360
	}

	return models.Orientation{
		Pitch:   int(math.Round(pitch)),
		Roll:    int(math.Round(roll)),
		Heading: h,
	}
}

// Orientation returns the last committed estimate.
func (e *Estimator) Orientation() models.Orientation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

func (e *Estimator) IsAvailable() bool {
	return e.available
}

// IsFlipped reports pitch or roll beyond the tilt limit. Always false while
// the sensor is unavailable.
func (e *Estimator) IsFlipped() bool {
	if !e.available {
		return false
	}
	o := e.Orientation()
	return math.Abs(float64(o.Pitch)) > e.opts.TiltAngleMax ||
		math.Abs(float64(o.Roll)) > e.opts.TiltAngleMax
}
