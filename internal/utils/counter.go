package utils

import "sync/atomic"

var pushSequence uint64

// NextPushSequence returns a process-wide, strictly increasing push number.
func NextPushSequence() uint64 {
	return atomic.AddUint64(&pushSequence, 1)
}
