// Package sun classifies an instant as day or night for a fixed observer
// from the next sunrise and sunset.
package sun

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// ErrNoEvents is returned when neither a sunrise nor a sunset occurs within the search window
var ErrNoEvents = errors.New("no sunrise or sunset within search window")

// sunriseAltitude is the altitude of the sun's center at rise and set for a
// sea-level observer, in degrees (refraction plus solar radius).
const sunriseAltitude = -0.833

// searchDays bounds how many solar days after now are searched for events
const searchDays = 2

// Observer is a fixed point on the ground
type Observer struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
	Elevation float64 `json:"elevation"` // meters
}

// Validate checks the observer coordinates
func (o Observer) Validate() error {
	if o.Latitude < -90 || o.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", o.Latitude)
	}
	if o.Longitude < -180 || o.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", o.Longitude)
	}
	return nil
}

// Phase is the classification of one instant
type Phase struct {
	At          time.Time `json:"at"`
	NextSunrise time.Time `json:"next_sunrise"` // zero when none within the search window
	NextSunset  time.Time `json:"next_sunset"`  // zero when none within the search window
	Night       bool      `json:"night"`
	Polar       bool      `json:"polar"` // an event is missing or more than a day away; altitude decided
}

// NextEvent returns the name and instant of whichever event comes first
func (p Phase) NextEvent() (string, time.Time) {
	if p.Night {
		return "sunrise", p.NextSunrise
	}
	return "sunset", p.NextSunset
}

// HorizonAltitude returns the sun altitude in radians at which it rises or sets
// for an observer at the given elevation, including the horizon dip.
func HorizonAltitude(elevation float64) float64 {
	dip := 0.0
	if elevation > 0 {
		dip = -2.076 * math.Sqrt(elevation) / 60
	}
	return (sunriseAltitude + dip) * math.Pi / 180
}

// NextEvents returns the first sunrise and the first sunset strictly after now.
// Either may be zero when it does not happen within the search window.
func NextEvents(obs Observer, now time.Time) (rise, set time.Time, err error) {
	observer := suncalc.Observer{
		Latitude:  obs.Latitude,
		Longitude: obs.Longitude,
		Height:    obs.Elevation,
		Location:  time.UTC,
	}

	// suncalc solves for the solar day closest to the given date, so the day
	// before now is included to catch an event later today.
	for day := -1; day <= searchDays; day++ {
		date := now.Add(time.Duration(day) * 24 * time.Hour)
		times := suncalc.GetTimesWithObserver(date, observer)

		if t, ok := validEvent(times["sunrise"].Value, date); ok && t.After(now) {
			if rise.IsZero() || t.Before(rise) {
				rise = t
			}
		}
		if t, ok := validEvent(times["sunset"].Value, date); ok && t.After(now) {
			if set.IsZero() || t.Before(set) {
				set = t
			}
		}
	}

	if rise.IsZero() && set.IsZero() {
		return rise, set, ErrNoEvents
	}
	return rise, set, nil
}

// validEvent rejects the values suncalc produces when the sun never crosses
// the horizon on that day.
func validEvent(t, date time.Time) (time.Time, bool) {
	if t.IsZero() {
		return t, false
	}
	if d := t.Sub(date); d < -36*time.Hour || d > 36*time.Hour {
		return t, false
	}
	return t, true
}

// maxEventGap bounds how far away the next event may be for the event order
// to be trusted. Near the polar circles suncalc can report a rise a day early
// while the sun is still up.
const maxEventGap = 24 * time.Hour

// Classify decides whether now is night for obs. It is night when the next
// solar event is a sunrise. When an event is missing or the next one is more
// than a day away the sun altitude decides.
func Classify(obs Observer, now time.Time) Phase {
	rise, set, _ := NextEvents(obs, now)

	phase := Phase{At: now, NextSunrise: rise, NextSunset: set}
	phase.Night, phase.Polar = decide(now, rise, set, func() bool {
		pos := suncalc.GetPosition(now, obs.Latitude, obs.Longitude)
		return pos.Altitude < HorizonAltitude(obs.Elevation)
	})
	return phase
}

// decide applies the event order when both events are close, otherwise it
// reports polar and asks sunBelow.
func decide(now, rise, set time.Time, sunBelow func() bool) (night, polar bool) {
	if !rise.IsZero() && !set.IsZero() {
		next := rise
		if set.Before(next) {
			next = set
		}
		if next.Sub(now) <= maxEventGap {
			return rise.Before(set), false
		}
	}
	return sunBelow(), true
}
