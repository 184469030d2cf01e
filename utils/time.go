// Package utils provides utility functions for the nightvision application.
package utils //nolint:revive // utils is a common and acceptable package name

import (
	"time"
)

// FormatDuration formats a duration rounded to whole seconds as e.g. "3h43m0s".
// Negative durations are clamped to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}

// FormatClock formats t as a wall-clock time in loc, e.g. "04:43:10 BST".
// A nil loc means time.Local.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04:05 MST")
}
