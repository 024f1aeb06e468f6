package handlers

import (
	"net/http"
	"time"

	"emotionquest/internal/metrics"
	"emotionquest/internal/models"
	"emotionquest/internal/service"
)

// StreakHandler handles the daily check-in API
type StreakHandler struct {
	streakService *service.StreakService
	metrics       *metrics.Metrics
}

// NewStreakHandler creates a new streak handler
func NewStreakHandler(streakService *service.StreakService, m *metrics.Metrics) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
		metrics:       m,
	}
}

type streakResponse struct {
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastActiveDate  *time.Time `json:"lastActiveDate"`
	CompletedToday  bool       `json:"completedToday"`
	GamesCompleted  int        `json:"gamesCompleted"`
	DailyGoal       int        `json:"dailyGoal"`
	ProgressPercent float64    `json:"progressPercent"`
	LastUpdated     *time.Time `json:"lastUpdated"`
}

func newStreakResponse(d *models.StreakData) streakResponse {
	resp := streakResponse{
		CurrentStreak:   d.CurrentStreak,
		LongestStreak:   d.LongestStreak,
		LastActiveDate:  d.LastActiveDate,
		CompletedToday:  d.CompletedToday,
		GamesCompleted:  d.GamesCompleted,
		DailyGoal:       models.MaxDailyGames,
		ProgressPercent: d.ProgressPercent(),
	}
	if !d.LastUpdated.IsZero() {
		resp.LastUpdated = &d.LastUpdated
	}
	return resp
}

type checkInResponse struct {
	Status models.CheckInStatus `json:"status"`
	Streak streakResponse       `json:"streak"`
}

// GetStreak returns today's view of the streak record
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	data, err := h.streakService.GetStreak(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error loading streak", err)
		return
	}
	respondJSONCached(w, r, newStreakResponse(data))
}

// CheckIn records today's check-in
func (h *StreakHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.streakService.CheckIn(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error checking in", err)
		return
	}

	h.metrics.CheckIn(string(result.Status))
	requestLogger(r).WithField("status", result.Status).
		WithField("current_streak", result.Streak.CurrentStreak).
		Info("Check-in processed")

	respondJSON(w, http.StatusOK, checkInResponse{
		Status: result.Status,
		Streak: newStreakResponse(&result.Streak),
	})
}

// RecordGame counts one finished mini-game for today
func (h *StreakHandler) RecordGame(w http.ResponseWriter, r *http.Request) {
	data, err := h.streakService.RecordGameCompletion(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error recording game", err)
		return
	}

	h.metrics.GameCompleted()
	respondJSON(w, http.StatusOK, newStreakResponse(data))
}
