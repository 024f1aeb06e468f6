package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emotionquest/internal/models"
)

// StreakSchemaVersion is the layout written for dailyStreak
const StreakSchemaVersion = 1

// streakRecordOut is the layout written to the store
type streakRecordOut struct {
	SchemaVersion  int     `json:"schemaVersion"`
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	LastActiveDate *string `json:"lastActiveDate"`
	CompletedToday bool    `json:"completedToday"`
	GamesCompleted int     `json:"gamesCompleted"`
	LastUpdated    string  `json:"lastUpdated"`
}

// streakRecordIn accepts every layout seen so far. Counters were written by
// JavaScript, so they are read as floats.
type streakRecordIn struct {
	SchemaVersion  int     `json:"schemaVersion"`
	CurrentStreak  float64 `json:"currentStreak"`
	LongestStreak  float64 `json:"longestStreak"`
	LastActiveDate *string `json:"lastActiveDate"`
	CompletedToday bool    `json:"completedToday"`
	GamesCompleted float64 `json:"gamesCompleted"`
	LastUpdated    *string `json:"lastUpdated"`
}

// StreakRepository persists the daily check-in record
type StreakRepository struct {
	store RecordStore
}

func NewStreakRepository(store RecordStore) *StreakRepository {
	return &StreakRepository{store: store}
}

// Load reads the record, or the all-zero record if none was saved
func (r *StreakRepository) Load(ctx context.Context) (*models.StreakData, error) {
	raw, found, err := r.store.Get(ctx, StreakKey)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: StreakKey, Err: err}
	}
	if !found {
		return &models.StreakData{}, nil
	}

	data, err := DecodeStreak(raw)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Key: StreakKey, Err: err}
	}
	return data, nil
}

// Save writes the record at the current schema version
func (r *StreakRepository) Save(ctx context.Context, data *models.StreakData) error {
	raw, err := EncodeStreak(data)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: StreakKey, Err: err}
	}
	if err := r.store.Set(ctx, StreakKey, raw); err != nil {
		return &PersistenceError{Op: "write", Key: StreakKey, Err: err}
	}
	return nil
}

// DecodeStreak parses a stored record and applies the defaulting rules:
// counters are clamped to their ranges, longestStreak is never below
// currentStreak, and unreadable timestamps become zero/nil.
func DecodeStreak(raw string) (*models.StreakData, error) {
	var rec streakRecordIn
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec.SchemaVersion > StreakSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, rec.SchemaVersion)
	}

	data := &models.StreakData{
		CurrentStreak:  clamp(int(rec.CurrentStreak), 0, -1),
		LongestStreak:  clamp(int(rec.LongestStreak), 0, -1),
		CompletedToday: rec.CompletedToday,
		GamesCompleted: clamp(int(rec.GamesCompleted), 0, models.MaxDailyGames),
	}
	if data.LongestStreak < data.CurrentStreak {
		data.LongestStreak = data.CurrentStreak
	}
	if t, ok := parseTimestamp(rec.LastActiveDate); ok {
		data.LastActiveDate = &t
	}
	if t, ok := parseTimestamp(rec.LastUpdated); ok {
		data.LastUpdated = t
	}
	return data, nil
}

// EncodeStreak renders the record in the current layout with UTC timestamps
func EncodeStreak(data *models.StreakData) (string, error) {
	rec := streakRecordOut{
		SchemaVersion:  StreakSchemaVersion,
		CurrentStreak:  data.CurrentStreak,
		LongestStreak:  data.LongestStreak,
		CompletedToday: data.CompletedToday,
		GamesCompleted: data.GamesCompleted,
	}
	if data.LastActiveDate != nil {
		s := formatTimestamp(*data.LastActiveDate)
		rec.LastActiveDate = &s
	}
	if !data.LastUpdated.IsZero() {
		rec.LastUpdated = formatTimestamp(data.LastUpdated)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseTimestamp(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// clamp bounds v to [lo, hi]; hi < 0 means no upper bound
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}
