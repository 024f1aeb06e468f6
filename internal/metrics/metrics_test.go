package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RequestStarted()
	m.RequestFinished("GET /api/streak", 200, 5*time.Millisecond)
	m.CheckIn("checked_in")
	m.CheckIn("already_done")
	m.CheckIn("already_done")
	m.GameCompleted()
	m.QuestionsServed(10)
	m.Recognized("happy")
	m.Limited()

	body := scrape(t, m)
	for _, line := range []string{
		`emotionquest_http_requests_in_flight 0`,
		`emotionquest_http_requests_total{route="GET /api/streak",status="200"} 1`,
		`emotionquest_check_ins_total{status="already_done"} 2`,
		`emotionquest_check_ins_total{status="checked_in"} 1`,
		`emotionquest_games_completed_total 1`,
		`emotionquest_quiz_questions_generated_total 10`,
		`emotionquest_recognitions_total{label="happy"} 1`,
		`emotionquest_http_rate_limited_total 1`,
	} {
		assert.Contains(t, body, line)
	}
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.GameCompleted()
	assert.Contains(t, scrape(t, b), "emotionquest_games_completed_total 0")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RequestStarted()
	m.RequestFinished("x", 500, time.Second)
	m.CheckIn("checked_in")
	m.GameCompleted()
	m.QuestionsServed(3)
	m.Recognized("sad")
	m.Limited()
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
