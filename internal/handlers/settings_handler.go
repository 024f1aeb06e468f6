package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"emotionquest/internal/models"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

// SettingsHandler handles the expression image settings API
type SettingsHandler struct {
	settingsService *service.SettingsService
	uploadMaxSize   int64
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService, uploadMaxSize int64) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		uploadMaxSize:   uploadMaxSize,
	}
}

type settingsResponse struct {
	Images   map[models.Emotion]string `json:"images"`
	Complete bool                      `json:"complete"`
	Missing  []models.Emotion          `json:"missing"`
}

func newSettingsResponse(s *models.ExpressionSettings) settingsResponse {
	missing := s.Missing()
	if missing == nil {
		missing = []models.Emotion{}
	}
	return settingsResponse{
		Images:   s.Images,
		Complete: len(missing) == 0,
		Missing:  missing,
	}
}

type setImageRequest struct {
	Emotion  string `json:"emotion" validate:"required,emotion"`
	ImageRef string `json:"imageRef" validate:"omitempty,startswith=data:image/"`
}

type emotionPath struct {
	Emotion string `json:"emotion" validate:"required,emotion"`
}

type emotionInfo struct {
	ID          models.Emotion `json:"id"`
	Name        string         `json:"name"`
	ChineseName string         `json:"chineseName"`
}

// ListEmotions returns the five categories with their display names
func (h *SettingsHandler) ListEmotions(w http.ResponseWriter, r *http.Request) {
	emotions := make([]emotionInfo, len(models.AllEmotions))
	for i, e := range models.AllEmotions {
		emotions[i] = emotionInfo{ID: e, Name: e.DisplayName(), ChineseName: e.ChineseName()}
	}
	respondJSONCached(w, r, map[string]any{"emotions": emotions})
}

// GetSettings returns the saved settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error loading settings", err)
		return
	}
	respondJSONCached(w, r, newSettingsResponse(settings))
}

// GetDraft returns the unsaved edits, or the saved settings if there are none
func (h *SettingsHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.settingsService.Draft(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error loading settings draft", err)
		return
	}
	respondJSON(w, http.StatusOK, newSettingsResponse(draft))
}

// DiscardDraft drops unsaved edits
func (h *SettingsHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	h.settingsService.DiscardDraft()
	w.WriteHeader(http.StatusNoContent)
}

// SetImage replaces one emotion's image in the draft from a JSON body
func (h *SettingsHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxDataURILength(h.uploadMaxSize)+1024)

	var req setImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithServiceError(w, requestLogger(r), "Error decoding image request",
				utils.ValidationError{Field: "imageRef", Message: fmt.Sprintf("image exceeds %d bytes", h.uploadMaxSize)})
			return
		}
		respondWithError(w, requestLogger(r), http.StatusBadRequest, ErrInvalidJSON, "Error decoding image request", err)
		return
	}
	req.Emotion = r.PathValue("emotion")

	if err := requests.Validate(req); err != nil {
		respondWithServiceError(w, requestLogger(r), "Error validating image request", err)
		return
	}

	h.applyImage(w, r, req.Emotion, req.ImageRef)
}

// UploadImage replaces one emotion's image in the draft from a multipart file
func (h *SettingsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	path := emotionPath{Emotion: r.PathValue("emotion")}
	if err := requests.Validate(path); err != nil {
		respondWithServiceError(w, requestLogger(r), "Error validating upload", err)
		return
	}

	data, err := readUploadedImage(w, r, h.uploadMaxSize)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), ErrInvalidUpload, err)
		return
	}
	contentType, err := utils.SniffImage(data, h.uploadMaxSize)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), ErrInvalidUpload, err)
		return
	}

	h.applyImage(w, r, path.Emotion, utils.EncodeDataURI(contentType, data))
}

func (h *SettingsHandler) applyImage(w http.ResponseWriter, r *http.Request, name, imageRef string) {
	emotion, err := utils.ValidateEmotion(name)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error parsing emotion", err)
		return
	}

	if err := h.settingsService.SetImage(r.Context(), emotion, imageRef); err != nil {
		respondWithServiceError(w, requestLogger(r), "Error setting image", err)
		return
	}

	draft, err := h.settingsService.Draft(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error loading settings draft", err)
		return
	}
	respondJSON(w, http.StatusOK, newSettingsResponse(draft))
}

// Save persists the draft, or reports which emotions still lack an image
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	saved, err := h.settingsService.Save(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error saving settings", err)
		return
	}

	requestLogger(r).Info("Expression settings saved")
	respondJSON(w, http.StatusOK, newSettingsResponse(saved))
}

// IsComplete reports whether every emotion has a saved image
func (h *SettingsHandler) IsComplete(w http.ResponseWriter, r *http.Request) {
	complete, err := h.settingsService.IsComplete(r.Context())
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error checking settings", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"complete": complete})
}
