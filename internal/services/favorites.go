package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"confsched/internal/domain"
)

type favoritesService struct {
	repo   domain.FavoritesRepository
	logger *slog.Logger
	ids    map[string]bool
}

// NewFavoritesService creates a FavoritesService backed by repo. A nil repo
// keeps favorites in memory only, which matches the degraded mode the viewer
// falls into when the local store cannot be opened.
func NewFavoritesService(repo domain.FavoritesRepository, logger *slog.Logger) domain.FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &favoritesService{
		repo:   repo,
		logger: logger,
		ids:    make(map[string]bool),
	}
}

func (s *favoritesService) Load(ctx context.Context) map[string]bool {
	s.ids = make(map[string]bool)
	if s.repo == nil {
		return s.snapshot()
	}
	ids, err := s.repo.Load(ctx)
	if err != nil {
		// Absent or unreadable favorites degrade to the empty set;
		// this must never fail the caller.
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("load favorites failed, starting empty", "err", err)
		}
		return s.snapshot()
	}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = true
		}
	}
	return s.snapshot()
}

func (s *favoritesService) Toggle(ctx context.Context, id string) map[string]bool {
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}

	if s.repo != nil {
		ids := make([]string, 0, len(s.ids))
		for v := range s.ids {
			ids = append(ids, v)
		}
		// Stable on-disk representation.
		sort.Strings(ids)
		if err := s.repo.Save(ctx, ids); err != nil {
			s.logger.Warn("persist favorites failed, keeping in-memory set", "err", err)
		}
	}
	return s.snapshot()
}

func (s *favoritesService) IsFavorite(id string) bool {
	return s.ids[id]
}

func (s *favoritesService) snapshot() map[string]bool {
	out := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}
