package domain

import (
	"sort"
	"time"
)

const (
	dateKeyLayout  = "2006-01-02"
	dayLabelLayout = "Monday, January 2"
)

// DayIndex is the derived per-date view of the schedule: the distinct rooms
// and time slots of that day plus a time slot -> room -> session lookup.
// Sessions without a start instant never reach a DayIndex; sessions without
// a room contribute their time slot but are absent from SessionMap.
type DayIndex struct {
	Date       string
	Label      string
	Rooms      []string
	TimeSlots  []string
	SessionMap map[string]map[string]*Session
}

// Session looks up the session at the given time slot and room.
func (d *DayIndex) Session(slot, room string) (*Session, bool) {
	byRoom, ok := d.SessionMap[slot]
	if !ok {
		return nil, false
	}
	s, ok := byRoom[room]
	return s, ok
}

// Schedule bundles the raw session list with the derived day indexes.
// DayOrder holds the date keys in chronological order.
type Schedule struct {
	Sessions []*Session
	Days     map[string]*DayIndex
	DayOrder []string
}

// BuildDayIndexes derives the per-day indexes from the full unfiltered
// session list. Workshops and sessions without a start instant are skipped;
// blank-room sessions keep their time slot but stay out of SessionMap. The
// function is pure: the result shares no containers with the caller, and
// malformed sessions are omitted rather than reported. When two sessions
// claim the same (slot, room) pair the later one in input order wins,
// matching the upstream feed's observed behavior.
func BuildDayIndexes(sessions []*Session) map[string]*DayIndex {
	type dayAccum struct {
		day   *DayIndex
		rooms map[string]struct{}
		slots map[string]struct{}
	}
	acc := make(map[string]*dayAccum)

	for _, s := range sessions {
		if s == nil || s.Format == FormatWorkshop || !s.HasStart() {
			continue
		}
		start := s.StartsAt.UTC()
		date := start.Format(dateKeyLayout)
		a := acc[date]
		if a == nil {
			a = &dayAccum{
				day: &DayIndex{
					Date:       date,
					Label:      start.Format(dayLabelLayout),
					SessionMap: make(map[string]map[string]*Session),
				},
				rooms: make(map[string]struct{}),
				slots: make(map[string]struct{}),
			}
			acc[date] = a
		}

		slot := s.SlotKey()
		a.slots[slot] = struct{}{}

		if !s.HasRoom() {
			continue
		}
		a.rooms[s.Room] = struct{}{}
		byRoom := a.day.SessionMap[slot]
		if byRoom == nil {
			byRoom = make(map[string]*Session)
			a.day.SessionMap[slot] = byRoom
		}
		byRoom[s.Room] = s
	}

	days := make(map[string]*DayIndex, len(acc))
	for date, a := range acc {
		a.day.Rooms = sortedKeys(a.rooms)
		a.day.TimeSlots = sortedKeys(a.slots)
		days[date] = a.day
	}
	return days
}

// SortedDates returns the date keys of days in chronological order.
func SortedDates(days map[string]*DayIndex) []string {
	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// SlotTime parses a time-slot key back into its instant.
func SlotTime(slot string) (time.Time, error) {
	return time.Parse(time.RFC3339, slot)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
