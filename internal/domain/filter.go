package domain

// VisibleSlots returns the day's time slots to display, in chronological
// order. With favoritesOnly off every slot is visible; with it on a slot is
// kept only when at least one of its sessions (across any room) is in
// favorites. The result is always a fresh slice.
func VisibleSlots(day *DayIndex, favorites map[string]bool, favoritesOnly bool) []string {
	if day == nil {
		return nil
	}
	if !favoritesOnly {
		return append([]string(nil), day.TimeSlots...)
	}
	var slots []string
	for _, slot := range day.TimeSlots {
		for _, s := range day.SessionMap[slot] {
			if favorites[s.ID] {
				slots = append(slots, slot)
				break
			}
		}
	}
	return slots
}

// IsVisible reports whether the cell at (slot, room) should be displayed:
// a session must exist there, and with favoritesOnly on it must be favorited.
func IsVisible(day *DayIndex, slot, room string, favorites map[string]bool, favoritesOnly bool) bool {
	if day == nil {
		return false
	}
	s, ok := day.Session(slot, room)
	if !ok {
		return false
	}
	if favoritesOnly {
		return favorites[s.ID]
	}
	return true
}
