// Package clock pins every timestamp the service writes or compares to one time zone.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone all stamps are written in.
const DefaultZone = "Europe/Madrid"

// Clock returns the current instant in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a wall clock for the named zone.
func New(zone string) (Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Clock{}, fmt.Errorf("clock: load zone %q: %w", zone, err)
	}
	return Clock{loc: loc, now: time.Now}, nil
}

// Fixed returns a clock frozen at t, for tests.
func Fixed(t time.Time, loc *time.Location) Clock {
	return Clock{loc: loc, now: func() time.Time { return t }}
}

// Func returns a clock backed by an arbitrary time source.
func Func(now func() time.Time, loc *time.Location) Clock {
	return Clock{loc: loc, now: now}
}

// Now returns the current instant in the clock's zone.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

// In converts t to the clock's zone.
func (c Clock) In(t time.Time) time.Time {
	return t.In(c.Location())
}

// Location returns the configured zone, UTC for a zero Clock.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
