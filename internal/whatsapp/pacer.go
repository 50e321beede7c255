package whatsapp

import (
	"time"

	"golang.org/x/time/rate"
)

// NewPacer allows one send per interval with no burst. A zero interval
// disables pacing.
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
