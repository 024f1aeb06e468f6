package service

import (
	"context"
	"sync"
	"time"

	"emotionquest/internal/models"
	"emotionquest/internal/repository"
	"emotionquest/internal/utils"
)

// StreakService tracks daily check-ins and games played per day
type StreakService struct {
	repo  *repository.StreakRepository
	clock utils.Clock
	loc   *time.Location

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// NewStreakService creates a new streak service. Calendar days are taken in loc.
func NewStreakService(repo *repository.StreakRepository, clock utils.Clock, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.Local
	}
	return &StreakService{
		repo:  repo,
		clock: clock,
		loc:   loc,
	}
}

// rollover resets the per-day fields when the record was last touched on an
// earlier day
func (s *StreakService) rollover(data *models.StreakData, now time.Time) {
	if data.LastUpdated.IsZero() || !utils.SameDay(data.LastUpdated, now, s.loc) {
		data.CompletedToday = false
		data.GamesCompleted = 0
	}
}

// GetStreak returns the record as it stands today
func (s *StreakService) GetStreak(ctx context.Context) (*models.StreakData, error) {
	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.rollover(data, s.clock.Now())
	return data, nil
}

// ProgressPercent returns today's progress toward the daily game goal
func (s *StreakService) ProgressPercent(ctx context.Context) (float64, error) {
	data, err := s.GetStreak(ctx)
	if err != nil {
		return 0, err
	}
	return data.ProgressPercent(), nil
}

// RecordGameCompletion counts one finished mini-game for today, capped at
// models.MaxDailyGames. The first game of a new day starts the count at 1.
func (s *StreakService) RecordGameCompletion(ctx context.Context) (*models.StreakData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	s.rollover(data, now)
	data.GamesCompleted = min(data.GamesCompleted+1, models.MaxDailyGames)
	data.LastUpdated = now

	if err := s.repo.Save(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// CheckIn records today's check-in. A second check-in on the same day is a
// no-op reported as models.AlreadyDone.
func (s *StreakService) CheckIn(ctx context.Context) (*models.CheckInResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	s.rollover(data, now)
	if data.CompletedToday {
		return &models.CheckInResult{Status: models.AlreadyDone, Streak: *data}, nil
	}

	if data.LastActiveDate == nil {
		data.CurrentStreak = 1
	} else {
		switch utils.DaysBetween(*data.LastActiveDate, now, s.loc) {
		case 0:
			if data.CurrentStreak == 0 {
				data.CurrentStreak = 1
			}
		case 1:
			data.CurrentStreak++
		default:
			// gap of two or more days, or the clock went backwards
			data.CurrentStreak = 1
		}
	}
	data.LongestStreak = max(data.LongestStreak, data.CurrentStreak)
	data.CompletedToday = true
	data.LastActiveDate = &now
	data.LastUpdated = now

	if err := s.repo.Save(ctx, data); err != nil {
		return nil, err
	}
	return &models.CheckInResult{Status: models.CheckedIn, Streak: *data}, nil
}
