package httpx

import "time"

// SetNow swaps the health clock for a test and returns a restore func.
func SetNow(f func() time.Time) func() {
	orig := now
	now = f
	return func() { now = orig }
}
