package hardware

import "errors"

var (
	ErrNotAssociated = errors.New("radio not associated")
	ErrNoDevice      = errors.New("device not responding")
)

// IMU is a simulated accelerometer/magnetometer. It reports a level mower
// facing the configured magnetic axis until tilted with SetAccel.
type IMU struct {
	present bool

	ax, ay, az int16
	mx, my, mz int16
}

func NewIMU() *IMU {
	return &IMU{
		present: true,
		az:      1000,
		mx:      0,
		my:      -300,
	}
}

// SetPresent makes Begin fail when false.
func (d *IMU) SetPresent(present bool) { d.present = present }

func (d *IMU) SetAccel(x, y, z int16) { d.ax, d.ay, d.az = x, y, z }
func (d *IMU) SetMag(x, y, z int16)   { d.mx, d.my, d.mz = x, y, z }

func (d *IMU) Begin() error {
	if !d.present {
		return ErrNoDevice
	}
	return nil
}

func (d *IMU) Calibrate() error     { return nil }
func (d *IMU) AccelAvailable() bool { return d.present }
func (d *IMU) MagAvailable() bool   { return d.present }

func (d *IMU) ReadAccel() (x, y, z int16, err error) {
	if !d.present {
		return 0, 0, 0, ErrNoDevice
	}
	return d.ax, d.ay, d.az, nil
}

func (d *IMU) ReadMag() (x, y, z int16, err error) {
	if !d.present {
		return 0, 0, 0, ErrNoDevice
	}
	return d.mx, d.my, d.mz, nil
}
