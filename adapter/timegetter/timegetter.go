// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// TimeGetter implements [domain.TimeGetter]. Returned times are truncated to
// milliseconds, the precision of a BSON date, so that a value written by
// $currentDate survives a round trip through the driver unchanged.
type TimeGetter struct {
	now      func() time.Time
	location *time.Location
}

// Option configures a [TimeGetter].
type Option func(*TimeGetter)

// WithClock replaces the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(t *TimeGetter) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLocation sets the location of the returned times. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(t *TimeGetter) {
		if loc != nil {
			t.location = loc
		}
	}
}

// NewTimeGetter returns a new implementation of domain.TimeGetter.
func NewTimeGetter(options ...Option) domain.TimeGetter {
	t := &TimeGetter{
		now:      time.Now,
		location: time.UTC,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return t.now().Truncate(time.Millisecond).In(t.location)
}
