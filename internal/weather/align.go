package weather

import (
	"sort"
	"time"
)

// DisplayDays derives the canonical row set for the comparison grid: the
// union of day keys across every non-empty slot, filtered to today or
// later, sorted ascending. today is the viewer's local day key.
//
// A slot with no summary map falls back to keys derived from its raw
// periods. A location missing a given day renders an empty cell for that
// row; it never shrinks the row set.
func DisplayDays(slots []*LocationSlot, today string) []string {
	seen := make(map[string]struct{})
	for _, slot := range slots {
		if slot.Empty() {
			continue
		}
		if len(slot.Summaries) > 0 {
			for key := range slot.Summaries {
				seen[key] = struct{}{}
			}
			continue
		}
		for _, p := range slot.Periods {
			seen[DayKey(p.StartTime)] = struct{}{}
		}
	}

	days := make([]string, 0, len(seen))
	for key := range seen {
		// Fixed-width YYYY-MM-DD keys order correctly as strings.
		if key >= today {
			days = append(days, key)
		}
	}
	sort.Strings(days)
	return days
}

// AlertAppliesOnDay reports whether an alert's validity window touches the
// given day's local midnight-to-midnight window. Overlap, not containment:
// an alert spanning several days must mark every day it touches.
//
// A missing start bound defaults to the day's own start and a missing end
// bound to the day's own end, so an unbounded alert applies exactly to its
// announced scope.
func AlertAppliesOnDay(alert Alert, dayKey string, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	dayStart, err := time.ParseInLocation("2006-01-02", dayKey, loc)
	if err != nil {
		return false
	}
	// Local 23:59:59 from the calendar date; adding 24h would drift on DST
	// transition days.
	y, m, d := dayStart.Date()
	dayEnd := time.Date(y, m, d, 23, 59, 59, 0, loc)

	start := dayStart
	if alert.Starts != nil {
		start = *alert.Starts
	}
	end := dayEnd
	if alert.Ends != nil {
		end = *alert.Ends
	}

	return !dayStart.After(end) && !dayEnd.Before(start)
}

// AlertForDay returns the first alert in list order that applies on the
// given day, or nil when none do. First-match is deliberate: the upstream
// list is not guaranteed severity-ordered and this mirrors the product's
// observed behavior rather than a most-severe-wins policy.
func AlertForDay(alerts []Alert, dayKey string, loc *time.Location) *Alert {
	for i := range alerts {
		if AlertAppliesOnDay(alerts[i], dayKey, loc) {
			return &alerts[i]
		}
	}
	return nil
}
