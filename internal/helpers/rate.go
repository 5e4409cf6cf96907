package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// OnceAMinute returns a rate.Sometimes allowing one call per minute.
func OnceAMinute() *rate.Sometimes {
	return &rate.Sometimes{
		First:    1,
		Interval: time.Minute,
	}
}
