package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"confsched/internal/domain"
)

// sessionDTO mirrors one session record as the feed serves it. Times and the
// duration arrive as strings and are validated during conversion.
type sessionDTO struct {
	SessionID     string       `json:"sessionId"`
	Title         string       `json:"title"`
	Format        string       `json:"format"`
	Length        string       `json:"length"`
	Room          string       `json:"room"`
	StartTimeZulu string       `json:"startTimeZulu"`
	EndTimeZulu   string       `json:"endTimeZulu"`
	Speakers      []speakerDTO `json:"speakers"`
	Abstract      string       `json:"abstract"`
}

type speakerDTO struct {
	Name string `json:"name"`
}

// feedEnvelope is the wrapped feed shape: {"sessions": [...]}.
type feedEnvelope struct {
	Sessions []sessionDTO `json:"sessions"`
}

type httpFetcher struct {
	client *http.Client
	url    string
}

// NewHTTPFetcher returns a fetcher that issues a GET against the feed URL.
func NewHTTPFetcher(client *http.Client, url string) domain.SessionFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client, url: url}
}

func (f *httpFetcher) Fetch(ctx context.Context) ([]*domain.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: feed returned status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}

	dtos, err := decodeSessions(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFeed, err)
	}

	sessions := make([]*domain.Session, 0, len(dtos))
	for _, d := range dtos {
		sessions = append(sessions, toDomain(d))
	}
	return sessions, nil
}

// decodeSessions accepts both feed shapes: an object wrapping a sessions
// array, or the bare array itself.
func decodeSessions(body []byte) ([]sessionDTO, error) {
	var env feedEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Sessions != nil {
		return env.Sessions, nil
	}
	var list []sessionDTO
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// toDomain converts a raw feed record. Malformed fields degrade to zero
// values; the indexer decides what to drop.
func toDomain(d sessionDTO) *domain.Session {
	s := &domain.Session{
		ID:       d.SessionID,
		Title:    d.Title,
		Format:   d.Format,
		Room:     d.Room,
		Abstract: d.Abstract,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(d.Length)); err == nil && n > 0 {
		s.Length = n
	}
	if t, ok := parseZulu(d.StartTimeZulu); ok {
		s.StartsAt = t
	}
	if t, ok := parseZulu(d.EndTimeZulu); ok {
		s.EndsAt = t
	}
	for _, sp := range d.Speakers {
		s.Speakers = append(s.Speakers, domain.Speaker{Name: sp.Name})
	}
	return s
}

// parseZulu parses the feed's ISO-8601 UTC timestamps, with or without the
// trailing zone designator.
func parseZulu(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", v); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
