package domain

import (
	"context"
	"strings"
	"time"
)

// FormatWorkshop is the session format excluded from all scheduling views.
const FormatWorkshop = "workshop"

// assumedDuration is used for live checks when a session has no end time.
const assumedDuration = 60 * time.Minute

// Speaker is one presenter of a session.
type Speaker struct {
	Name string `json:"name"`
}

// Session represents one scheduled talk from the feed. Immutable once fetched.
// StartsAt and EndsAt are zero when the feed omitted them; Length is zero when
// the feed value was missing or unparseable.
type Session struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Format   string    `json:"format"`
	Length   int       `json:"length"`
	Room     string    `json:"room"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Speakers []Speaker `json:"speakers"`
	Abstract string    `json:"abstract"`
}

// NewSession returns a new Session with the given fields.
func NewSession(id, title, format, room string, length int, startsAt, endsAt time.Time) *Session {
	return &Session{
		ID:       id,
		Title:    title,
		Format:   format,
		Room:     room,
		Length:   length,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
}

// HasStart reports whether the feed provided a start instant.
func (s *Session) HasStart() bool {
	return !s.StartsAt.IsZero()
}

// HasRoom reports whether the session has a non-blank room name.
func (s *Session) HasRoom() bool {
	return strings.TrimSpace(s.Room) != ""
}

// SlotKey returns the time-slot key for this session: the start instant in
// RFC 3339 UTC form. Lexical order of slot keys is chronological order.
func (s *Session) SlotKey() string {
	return s.StartsAt.UTC().Format(time.RFC3339)
}

// IsLiveAt reports whether now falls within the session's window. The window
// ends at EndsAt when present and later than the start; otherwise 60 minutes
// after the start.
func (s *Session) IsLiveAt(now time.Time) bool {
	if !s.HasStart() {
		return false
	}
	end := s.StartsAt.Add(assumedDuration)
	if !s.EndsAt.IsZero() && s.EndsAt.After(s.StartsAt) {
		end = s.EndsAt
	}
	return !now.Before(s.StartsAt) && now.Before(end)
}

// SpeakerNames returns the speakers' display names in feed order.
func (s *Session) SpeakerNames() []string {
	if len(s.Speakers) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Speakers))
	for _, sp := range s.Speakers {
		names = append(names, sp.Name)
	}
	return names
}

// SessionFetcher fetches the full session list from the feed (or a test double).
type SessionFetcher interface {
	Fetch(ctx context.Context) ([]*Session, error)
}

// FavoritesRepository defines storage for the persisted favorite session IDs.
// The whole set is written under a single fixed key.
type FavoritesRepository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// ScheduleService loads the session feed and derives the per-day indexes.
type ScheduleService interface {
	LoadSchedule(ctx context.Context) (*Schedule, error)
}

// FavoritesService owns the in-memory favorites set. It never fails the
// caller: persistence problems are logged and swallowed, so favoriting keeps
// working for the current run even when it cannot be saved.
type FavoritesService interface {
	// Load reads the persisted set; absent or unreadable data yields the
	// empty set. Returns a snapshot of the resulting set.
	Load(ctx context.Context) map[string]bool
	// Toggle adds id if absent or removes it if present, persists the new
	// set, and returns a snapshot of it.
	Toggle(ctx context.Context, id string) map[string]bool
	IsFavorite(id string) bool
}
