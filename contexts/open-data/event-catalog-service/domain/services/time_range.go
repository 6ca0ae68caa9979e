package services

import "time"

// OverlapsRange reports whether an event starting at start and ending at end
// (nil when open) intersects the half-open window [from, to). Nil bounds
// leave that side of the window unbounded. An event without an end matches
// when its start lies inside the window.
func OverlapsRange(start time.Time, end *time.Time, from, to *time.Time) bool {
	if to != nil && !start.Before(*to) {
		return false
	}
	if from == nil {
		return true
	}
	if end == nil {
		return !start.Before(*from)
	}
	return end.After(*from)
}
