package testcond

import (
	"fmt"
	"time"
)

// WaitForCondition polls eval every interval until it returns true or timeout elapses
func WaitForCondition(eval func() bool, interval time.Duration, timeout time.Duration) error {
	if eval() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	expired := time.After(timeout)

	for attempts := 1; ; attempts++ {
		select {
		case <-expired:
			return fmt.Errorf("condition not met after %s (%d attempts)", timeout, attempts)
		case <-ticker.C:
			if eval() {
				return nil
			}
		}
	}
}
