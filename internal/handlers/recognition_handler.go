package handlers

import (
	"net/http"

	"emotionquest/internal/metrics"
	"emotionquest/internal/service"
)

// RecognitionHandler accepts captured camera frames
type RecognitionHandler struct {
	recognitionService *service.RecognitionService
	metrics            *metrics.Metrics
	uploadMaxSize      int64
}

// NewRecognitionHandler creates a new recognition handler
func NewRecognitionHandler(recognitionService *service.RecognitionService, m *metrics.Metrics, uploadMaxSize int64) *RecognitionHandler {
	return &RecognitionHandler{
		recognitionService: recognitionService,
		metrics:            m,
		uploadMaxSize:      uploadMaxSize,
	}
}

// Recognize labels one uploaded frame
func (h *RecognitionHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedImage(w, r, h.uploadMaxSize)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), ErrInvalidUpload, err)
		return
	}

	result, err := h.recognitionService.Detect(r.Context(), data)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error recognizing image", err)
		return
	}

	h.metrics.Recognized(string(result.Label))
	respondJSON(w, http.StatusOK, result)
}
