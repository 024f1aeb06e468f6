package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"emotionquest/internal/repository"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, logger *logrus.Entry, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		entry := logger.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(logMsg)
		} else {
			entry.Warn(logMsg)
		}
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps an error returned by a service to a response
func respondWithServiceError(w http.ResponseWriter, logger *logrus.Entry, logMsg string, err error) {
	var validationErr utils.ValidationError
	var persistenceErr *repository.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: validationErr.Message,
			Field: validationErr.Field,
		})
	case errors.Is(err, service.ErrSettingsIncomplete):
		respondJSON(w, http.StatusConflict, errorResponse{Error: ErrSettingsIncomplete})
	case errors.As(err, &persistenceErr):
		logger = logger.WithFields(logrus.Fields{
			"op":  persistenceErr.Op,
			"key": persistenceErr.Key,
		})
		respondWithError(w, logger, http.StatusInternalServerError, ErrStorageUnavailable, logMsg, err)
	case errors.Is(err, context.Canceled):
		logger.WithError(err).Debug("Request canceled by client")
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
