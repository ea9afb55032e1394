package timex

import (
	"time"

	"irlink-go/x/mathx"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// Subdivide returns period/n rounded to the nearest nanosecond.
// n < 1 is treated as 1.
func Subdivide(period time.Duration, n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if period <= 0 {
		return 0
	}
	return time.Duration(mathx.RoundDiv(uint64(period), uint64(n)))
}
