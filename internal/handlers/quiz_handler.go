package handlers

import (
	"net/http"
	"strconv"

	"emotionquest/internal/metrics"
	"emotionquest/internal/models"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

// QuizHandler serves quiz question sets to the mini-games
type QuizHandler struct {
	quizService *service.QuizService
	metrics     *metrics.Metrics
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, m *metrics.Metrics) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		metrics:     m,
	}
}

type quizRequest struct {
	Count int `json:"count" validate:"min=0,max=100"`
}

type quizResponse struct {
	Questions []models.QuizQuestion `json:"questions"`
}

// GetQuestions generates ?count= questions (default 10)
func (h *QuizHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	req := quizRequest{Count: DefaultQuestionCount}
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithServiceError(w, requestLogger(r), "", utils.ValidationError{Field: "count", Message: "count must be a number"})
			return
		}
		req.Count = n
	}
	if err := requests.Validate(req); err != nil {
		respondWithServiceError(w, requestLogger(r), "Error validating quiz request", err)
		return
	}

	questions, err := h.quizService.GenerateQuestions(r.Context(), req.Count)
	if err != nil {
		respondWithServiceError(w, requestLogger(r), "Error generating questions", err)
		return
	}

	h.metrics.QuestionsServed(len(questions))
	respondJSON(w, http.StatusOK, quizResponse{Questions: questions})
}
