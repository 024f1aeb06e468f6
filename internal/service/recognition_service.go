package service

import (
	"context"

	"emotionquest/internal/models"
	"emotionquest/internal/utils"
)

// RecognitionService stands in for camera-based emotion recognition.
// It checks that it was given an image and returns a random label.
type RecognitionService struct {
	rng     utils.RandomSource
	maxSize int64
}

// NewRecognitionService creates a new recognition service
func NewRecognitionService(rng utils.RandomSource, maxSize int64) *RecognitionService {
	return &RecognitionService{rng: rng, maxSize: maxSize}
}

// Detect labels one captured frame. Confidence falls in [0.5, 1.0).
func (s *RecognitionService) Detect(ctx context.Context, image []byte) (*models.RecognitionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := utils.SniffImage(image, s.maxSize); err != nil {
		return nil, err
	}

	label := models.RecognitionLabels[s.rng.IntN(len(models.RecognitionLabels))]
	return &models.RecognitionResult{
		Label:      label,
		Confidence: 0.5 + s.rng.Float64()*0.5,
		Feedback:   label.Feedback(),
	}, nil
}
