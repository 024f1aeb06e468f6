package handlers

import (
	"net/http"

	"emotionquest/internal/metrics"
)

// Router bundles everything the API routes need
type Router struct {
	Settings    *SettingsHandler
	Streak      *StreakHandler
	Quiz        *QuizHandler
	Recognition *RecognitionHandler
	Middleware  *Middleware
	Metrics     *metrics.Metrics
}

// Handler registers the API routes and wraps them in the middleware chain
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	m := rt.Middleware

	mux.HandleFunc("GET /healthz", Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	mux.HandleFunc("GET /api/emotions", rt.Settings.ListEmotions)
	mux.HandleFunc("GET /api/settings", rt.Settings.GetSettings)
	mux.HandleFunc("GET /api/settings/draft", rt.Settings.GetDraft)
	mux.HandleFunc("DELETE /api/settings/draft", rt.Settings.DiscardDraft)
	mux.HandleFunc("PUT /api/settings/images/{emotion}", rt.Settings.SetImage)
	mux.HandleFunc("POST /api/settings/images/{emotion}/upload", m.RateLimit(rt.Settings.UploadImage))
	mux.HandleFunc("POST /api/settings/save", rt.Settings.Save)
	mux.HandleFunc("GET /api/settings/complete", rt.Settings.IsComplete)

	mux.HandleFunc("GET /api/streak", rt.Streak.GetStreak)
	mux.HandleFunc("POST /api/streak/check-in", rt.Streak.CheckIn)
	mux.HandleFunc("POST /api/streak/games", rt.Streak.RecordGame)

	mux.HandleFunc("GET /api/quiz/questions", rt.Quiz.GetQuestions)

	mux.HandleFunc("POST /api/recognition", m.RateLimit(rt.Recognition.Recognize))

	return m.Logging(m.Recover(mux))
}

// Health reports that the server is up
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
