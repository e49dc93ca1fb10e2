package utils

// Throttle gates pushes on an uptime clock measured in whole seconds. The
// first call always passes; later calls pass once interval seconds have
// elapsed since the last accepted one.
type Throttle struct {
	interval uint32
	lastSent uint32
	sent     bool
}

func NewThrottle(intervalSeconds uint32) *Throttle {
	return &Throttle{interval: intervalSeconds}
}

// Allow reports whether a push at uptime now may go out, and if so records it.
func (t *Throttle) Allow(now uint32) bool {
	if t.sent && now-t.lastSent < t.interval {
		return false
	}
	t.lastSent = now
	t.sent = true
	return true
}

