package policies

import (
	"time"

	"riide/internal/domain/shared/daterange"
)

// Clock supplies "now" and the business calendar date; pricing never reads the wall clock itself.
type Clock interface {
	Now() time.Time
	Today() daterange.Date
}

// SystemClock reads the wall clock and derives today in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time { return time.Now() }

func (c SystemClock) Today() daterange.Date {
	return daterange.Today(time.Now(), c.Location)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At       time.Time
	Location *time.Location
}

func (c FixedClock) Now() time.Time { return c.At }

func (c FixedClock) Today() daterange.Date {
	return daterange.Today(c.At, c.Location)
}
