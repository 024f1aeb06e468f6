package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotionquest/internal/metrics"
	"emotionquest/internal/models"
	"emotionquest/internal/repository"
	"emotionquest/internal/security"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

const testImage = "data:image/png;base64,iVBORw0KGgo="

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type testServer struct {
	handler http.Handler
	store   *repository.MemoryRecordStore
	now     time.Time
}

func newTestServer(t *testing.T, uploadLimit int) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	ts := &testServer{
		store: repository.NewMemoryRecordStore(),
		now:   time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	clock := utils.ClockFunc(func() time.Time { return ts.now })
	rng := utils.NewRandomSource(42)
	const maxUpload = 1 << 20

	settingsService := service.NewSettingsService(repository.NewSettingsRepository(ts.store), utils.MaxDataURILength(maxUpload))
	streakService := service.NewStreakService(repository.NewStreakRepository(ts.store), clock, time.UTC)
	quizService := service.NewQuizService(settingsService, rng)
	recognitionService := service.NewRecognitionService(rng, maxUpload)

	m := metrics.NewMetrics()
	router := &Router{
		Settings:    NewSettingsHandler(settingsService, maxUpload),
		Streak:      NewStreakHandler(streakService, m),
		Quiz:        NewQuizHandler(quizService, m),
		Recognition: NewRecognitionHandler(recognitionService, m, maxUpload),
		Middleware:  NewMiddleware(entry, m, security.NewRateLimiter(uploadLimit, time.Minute, clock)),
		Metrics:     m,
	}
	ts.handler = router.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req)
}

func multipartRequest(t *testing.T, path string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(ImageFormField, "capture.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) completeSettings(t *testing.T) {
	t.Helper()
	for _, e := range models.AllEmotions {
		rec := ts.doJSON(t, http.MethodPut, "/api/settings/images/"+e.String(), `{"imageRef":"`+testImage+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := ts.doJSON(t, http.MethodPost, "/api/settings/save", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = ts.do(t, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestListEmotions(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodGet, "/api/emotions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Emotions []emotionInfo `json:"emotions"`
	}](t, rec)
	require.Len(t, body.Emotions, 5)
	assert.Equal(t, models.Happy, body.Emotions[0].ID)
	assert.Equal(t, "开心", body.Emotions[0].ChineseName)
}

func TestSettingsFlow(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[settingsResponse](t, rec)
	assert.False(t, settings.Complete)
	assert.Len(t, settings.Missing, 5)

	rec = ts.doJSON(t, http.MethodPut, "/api/settings/images/happy", `{"imageRef":"`+testImage+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[settingsResponse](t, rec)
	assert.Equal(t, testImage, draft.Images[models.Happy])
	assert.Len(t, draft.Missing, 4)

	rec = ts.doJSON(t, http.MethodPost, "/api/settings/save", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decode[errorResponse](t, rec)
	assert.Equal(t, "images", errBody.Field)
	assert.Contains(t, errBody.Error, "sad")

	for _, e := range models.AllEmotions[1:] {
		rec = ts.doJSON(t, http.MethodPut, "/api/settings/images/"+e.String(), `{"imageRef":"`+testImage+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = ts.doJSON(t, http.MethodGet, "/api/settings/complete", "")
	assert.JSONEq(t, `{"complete":false}`, rec.Body.String())

	rec = ts.doJSON(t, http.MethodPost, "/api/settings/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[settingsResponse](t, rec).Complete)

	rec = ts.doJSON(t, http.MethodGet, "/api/settings/complete", "")
	assert.JSONEq(t, `{"complete":true}`, rec.Body.String())
}

func TestSetImageValidation(t *testing.T) {
	ts := newTestServer(t, 10)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "unknown emotion", path: "/api/settings/images/surprised", body: `{"imageRef":"` + testImage + `"}`, wantStatus: 422, wantField: "emotion"},
		{name: "not a data uri", path: "/api/settings/images/happy", body: `{"imageRef":"http://x/y.png"}`, wantStatus: 422, wantField: "imageRef"},
		{name: "bad json", path: "/api/settings/images/happy", body: `{`, wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.doJSON(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[errorResponse](t, rec).Field)
			}
		})
	}
}

func TestSetImageOversizedBody(t *testing.T) {
	ts := newTestServer(t, 10)

	huge := "data:image/png;base64," + strings.Repeat("A", 2<<20)
	rec := ts.doJSON(t, http.MethodPut, "/api/settings/images/happy", `{"imageRef":"`+huge+`"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "imageRef", body.Field)
	assert.Contains(t, body.Error, "exceeds")

	rec = ts.doJSON(t, http.MethodGet, "/api/settings/draft", "")
	assert.Empty(t, decode[settingsResponse](t, rec).Images[models.Happy])
}

func TestClearImageWithEmptyRef(t *testing.T) {
	ts := newTestServer(t, 10)
	ts.completeSettings(t)

	rec := ts.doJSON(t, http.MethodPut, "/api/settings/images/angry", `{"imageRef":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Emotion{models.Angry}, decode[settingsResponse](t, rec).Missing)

	rec = ts.doJSON(t, http.MethodDelete, "/api/settings/draft", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.doJSON(t, http.MethodGet, "/api/settings/draft", "")
	assert.True(t, decode[settingsResponse](t, rec).Complete)
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(t, multipartRequest(t, "/api/settings/images/sad/upload", pngHeader))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	draft := decode[settingsResponse](t, rec)
	assert.True(t, strings.HasPrefix(draft.Images[models.Sad], "data:image/png;base64,"))

	rec = ts.do(t, multipartRequest(t, "/api/settings/images/sad/upload", []byte("plain text")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, multipartRequest(t, "/api/settings/images/nope/upload", pngHeader))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/images/sad/upload", strings.NewReader("x"))
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSettingsETag(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodGet, "/api/settings", "")
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("If-None-Match", tag)
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	// A save from another tab changes the tag
	ts.completeSettings(t)
	req = httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("If-None-Match", tag)
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, tag, rec.Header().Get("ETag"))
}

func TestQuizEndpoint(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodGet, "/api/quiz/questions", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.completeSettings(t)

	rec = ts.doJSON(t, http.MethodGet, "/api/quiz/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[quizResponse](t, rec).Questions, DefaultQuestionCount)

	rec = ts.doJSON(t, http.MethodGet, "/api/quiz/questions?count=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	questions := decode[quizResponse](t, rec).Questions
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.Len(t, q.Options, models.OptionsPerQuestion)
		assert.GreaterOrEqual(t, q.CorrectIndex(), 0)
	}

	for _, count := range []string{"-1", "101", "many"} {
		rec = ts.doJSON(t, http.MethodGet, "/api/quiz/questions?count="+count, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, count)
		assert.Equal(t, "count", decode[errorResponse](t, rec).Field)
	}
}

func TestStreakEndpoints(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.doJSON(t, http.MethodPost, "/api/streak/check-in", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[checkInResponse](t, rec)
	assert.Equal(t, models.CheckedIn, first.Status)
	assert.Equal(t, 1, first.Streak.CurrentStreak)

	rec = ts.doJSON(t, http.MethodPost, "/api/streak/check-in", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AlreadyDone, decode[checkInResponse](t, rec).Status)

	for i := 0; i < 5; i++ {
		rec = ts.doJSON(t, http.MethodPost, "/api/streak/games", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	streak := decode[streakResponse](t, rec)
	assert.Equal(t, 4, streak.GamesCompleted)
	assert.Equal(t, 100.0, streak.ProgressPercent)

	ts.now = ts.now.Add(24 * time.Hour)
	rec = ts.doJSON(t, http.MethodGet, "/api/streak", "")
	require.Equal(t, http.StatusOK, rec.Code)
	streak = decode[streakResponse](t, rec)
	assert.False(t, streak.CompletedToday)
	assert.Equal(t, 0, streak.GamesCompleted)

	rec = ts.doJSON(t, http.MethodPost, "/api/streak/check-in", "")
	assert.Equal(t, 2, decode[checkInResponse](t, rec).Streak.CurrentStreak)
}

func TestStreakStorageFailure(t *testing.T) {
	ts := newTestServer(t, 10)
	require.NoError(t, ts.store.Set(t.Context(), repository.StreakKey, `{"schemaVersion":99}`))

	rec := ts.doJSON(t, http.MethodGet, "/api/streak", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrStorageUnavailable, decode[errorResponse](t, rec).Error)
}

func TestRecognitionEndpoint(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(t, multipartRequest(t, "/api/recognition", pngHeader))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[models.RecognitionResult](t, rec)
	assert.Contains(t, models.RecognitionLabels, result.Label)
	assert.GreaterOrEqual(t, result.Confidence, 0.5)

	rec = ts.do(t, multipartRequest(t, "/api/recognition", []byte("not an image")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRecognitionRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rec := ts.do(t, multipartRequest(t, "/api/recognition", pngHeader))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := ts.do(t, multipartRequest(t, "/api/recognition", pngHeader))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	spoofed := multipartRequest(t, "/api/recognition", pngHeader)
	spoofed.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec = ts.do(t, spoofed)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	ts.now = ts.now.Add(time.Minute)
	rec = ts.do(t, multipartRequest(t, "/api/recognition", pngHeader))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, 10)
	ts.doJSON(t, http.MethodPost, "/api/streak/check-in", "")

	rec := ts.doJSON(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `emotionquest_check_ins_total{status="checked_in"} 1`)
	assert.Contains(t, body, `route="POST /api/streak/check-in"`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, 10)
	rec := ts.doJSON(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEtagMatches(t *testing.T) {
	tag := etag([]byte("x"))
	assert.True(t, etagMatches(tag, tag))
	assert.True(t, etagMatches(`"other", `+tag, tag))
	assert.True(t, etagMatches("W/"+tag, tag))
	assert.True(t, etagMatches("*", tag))
	assert.False(t, etagMatches("", tag))
	assert.False(t, etagMatches(`"other"`, tag))
}
