package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"emotionquest/internal/metrics"
	"emotionquest/internal/security"
	"emotionquest/internal/utils"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	LoggerContextKey ContextKey = "logger"

	RequestIDHeader = "X-Request-ID"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	logger  *logrus.Entry
	metrics *metrics.Metrics
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. metrics and limiter may be nil.
func NewMiddleware(logger *logrus.Entry, m *metrics.Metrics, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		logger:  logger,
		metrics: m,
		limiter: limiter,
	}
}

// statusWriter remembers the status code written by a handler
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Logging tags each request with an ID, logs it and records request metrics
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		logger := m.logger.WithField("request_id", requestID)
		r = r.WithContext(context.WithValue(r.Context(), LoggerContextKey, logger))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		m.metrics.RequestStarted()
		next.ServeHTTP(sw, r)

		// Pattern is filled in by the ServeMux further down the chain
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		m.metrics.RequestFinished(route, sw.status, elapsed)

		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": elapsed,
		}).Info("Request handled")
	})
}

// Recover turns a panic in a handler into a 500 response
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestLogger(r).WithField("panic", rec).Error("Handler panicked")
				respondJSON(w, http.StatusInternalServerError, errorResponse{Error: ErrInternalServerError})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects clients that exceed the configured request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(m.limiter.ClientKey(r)) {
			m.metrics.Limited()
			respondWithError(w, requestLogger(r), http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// requestLogger returns the logger tagged by Logging, or the standard logger
func requestLogger(r *http.Request) *logrus.Entry {
	if logger, ok := r.Context().Value(LoggerContextKey).(*logrus.Entry); ok {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
