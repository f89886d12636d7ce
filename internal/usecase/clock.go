package usecase

import (
	"time"

	"scholarship-backend/internal/domain"
)

// Clock supplies the current instant and the time zone "today" is computed in.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today is the current calendar date in the clock's location.
func (c Clock) Today() time.Time {
	return domain.DateOf(c.Now().In(c.Location))
}
