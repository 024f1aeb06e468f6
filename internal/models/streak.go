package models

import "time"

// MaxDailyGames is the number of mini-games that makes a full day
const MaxDailyGames = 4

// StreakData is the persisted daily check-in record
type StreakData struct {
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate *time.Time
	CompletedToday bool
	GamesCompleted int
	LastUpdated    time.Time
}

// ProgressPercent returns today's progress toward MaxDailyGames, capped at 100
func (d *StreakData) ProgressPercent() float64 {
	p := float64(d.GamesCompleted) / MaxDailyGames * 100
	if p > 100 {
		return 100
	}
	return p
}

// CheckInStatus is the outcome of a check-in attempt
type CheckInStatus string

const (
	CheckedIn   CheckInStatus = "checked_in"
	AlreadyDone CheckInStatus = "already_done"
)

// CheckInResult is returned by a check-in attempt
type CheckInResult struct {
	Status CheckInStatus
	Streak StreakData
}
