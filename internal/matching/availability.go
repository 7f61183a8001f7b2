package matching

import "time"

// Night window bounds: a slot counts as a night slot when it starts at or
// after 18:00, or before 06:00 (covering windows that wrap past midnight).
const (
	nightWindowStartHour = 18
	nightWindowEndHour   = 6
)

// IsAvailable determines whether a worker with the given declared slots can
// be scheduled for a mission on missionDate.
//
// Decision sequence:
//  1. No slots at all: available. Absence of declared availability is an
//     optimistic default, not unavailability.
//  2. Active recurring slots matching the mission's day-of-week are
//     collected.
//  3. If none match, active specific-date slots on the mission date decide:
//     any such slot means available, none means unavailable.
//  4. With matching day-of-week slots, a day-shift mission is satisfied by
//     any of them; a night-shift mission additionally requires at least one
//     slot starting inside the night window.
//
// Deterministic, no I/O.
func IsAvailable(slots []AvailabilitySlot, missionDate time.Time, nightShift bool) bool {
	if len(slots) == 0 {
		return true
	}

	weekday := missionDate.Weekday()
	var dayMatches []AvailabilitySlot
	for _, s := range slots {
		if !s.Active || s.Weekday == nil {
			continue
		}
		if *s.Weekday == weekday {
			dayMatches = append(dayMatches, s)
		}
	}

	if len(dayMatches) == 0 {
		for _, s := range slots {
			if !s.Active || s.Date == nil {
				continue
			}
			if sameDate(*s.Date, missionDate) {
				return true
			}
		}
		return false
	}

	if !nightShift {
		return true
	}

	for _, s := range dayMatches {
		if isNightStart(s.StartHour) {
			return true
		}
	}
	return false
}

// isNightStart reports whether a slot starting at the given hour falls in
// the night window.
func isNightStart(startHour int) bool {
	return startHour >= nightWindowStartHour || startHour < nightWindowEndHour
}

// sameDate compares only the calendar date components.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
