package services

import (
	"context"
	"time"

	"confsched/internal/domain"
)

type scheduleService struct {
	fetcher        domain.SessionFetcher
	contextTimeout time.Duration
}

// NewScheduleService creates a ScheduleService over the given fetcher.
// A zero timeout leaves the feed request without a deadline.
func NewScheduleService(fetcher domain.SessionFetcher, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{
		fetcher:        fetcher,
		contextTimeout: timeout,
	}
}

// LoadSchedule fetches the full session list and rebuilds the day indexes
// from scratch. Each call returns a fresh, internally consistent snapshot;
// nothing is maintained incrementally.
func (s *scheduleService) LoadSchedule(ctx context.Context) (*domain.Schedule, error) {
	if s.contextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()
	}

	sessions, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	days := domain.BuildDayIndexes(sessions)
	return &domain.Schedule{
		Sessions: sessions,
		Days:     days,
		DayOrder: domain.SortedDates(days),
	}, nil
}
