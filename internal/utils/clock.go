package utils

import "time"

// MonotonicClock reports whole seconds since it was created.
type MonotonicClock struct {
	start time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Uptime() uint32 {
	return uint32(time.Since(c.start) / time.Second)
}
