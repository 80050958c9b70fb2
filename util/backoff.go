package util

import (
	"math/rand"
	"time"
)

// RandomTimeRange returns time.Duration between [interval/2, interval] randomly
func RandomTimeRange(interval time.Duration) time.Duration {
	t := interval / 2
	if t <= 0 {
		return interval
	}
	return time.Duration(rand.Int63n(int64(t)+1) + int64(t))
}
