package imu

import "slices"

// window is a fixed-capacity circular buffer of raw samples for one axis.
type window struct {
	samples []int16
	sorted  []int16
}

func newWindow(size int) window {
	return window{
		samples: make([]int16, size),
		sorted:  make([]int16, size),
	}
}

func (w *window) set(slot int, v int16) {
	w.samples[slot] = v
}

// median returns the middle element of the sorted window. The scratch
// buffer is reused so no allocation happens per tick.
func (w *window) median() int16 {
	copy(w.sorted, w.samples)
	slices.Sort(w.sorted)
	return w.sorted[len(w.sorted)/2]
}
