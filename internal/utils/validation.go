package utils

import (
	"fmt"
	"strings"

	"emotionquest/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmotion parses and checks an emotion category name
func ValidateEmotion(name string) (models.Emotion, error) {
	if strings.TrimSpace(name) == "" {
		return "", ValidationError{Field: "emotion", Message: "emotion is required"}
	}
	e, err := models.ParseEmotion(name)
	if err != nil {
		return "", ValidationError{Field: "emotion", Message: err.Error()}
	}
	return e, nil
}

// ValidateImageRef checks an image reference. Empty clears the slot; anything
// else must be an image data URI no larger than maxSize bytes.
func ValidateImageRef(ref string, maxSize int64) error {
	if ref == "" {
		return nil
	}
	if maxSize > 0 && int64(len(ref)) > maxSize {
		return ValidationError{Field: "imageRef", Message: fmt.Sprintf("image exceeds %d bytes", maxSize)}
	}
	if !strings.HasPrefix(ref, "data:image/") {
		return ValidationError{Field: "imageRef", Message: "image must be an image data URI"}
	}
	if !strings.Contains(ref, ",") {
		return ValidationError{Field: "imageRef", Message: "data URI has no payload"}
	}
	return nil
}

// ValidateSettingsComplete fails when any category is still without an image
func ValidateSettingsComplete(s *models.ExpressionSettings) error {
	missing := s.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, e := range missing {
		names[i] = e.String()
	}
	return ValidationError{
		Field:   "images",
		Message: "missing images for: " + strings.Join(names, ", "),
	}
}

// ValidateQuestionCount checks the requested batch size
func ValidateQuestionCount(count int) error {
	if count < 0 {
		return ValidationError{Field: "count", Message: "count must not be negative"}
	}
	return nil
}
