package service

import (
	"context"
	"sync"

	"emotionquest/internal/models"
	"emotionquest/internal/repository"
	"emotionquest/internal/utils"
)

// SettingsService manages the reference image chosen for each emotion.
// Edits collect in an unsaved draft until Save persists them.
type SettingsService struct {
	repo         *repository.SettingsRepository
	maxImageSize int64

	mu    sync.Mutex
	draft *models.ExpressionSettings
}

// NewSettingsService creates a new settings service. maxImageSize bounds the
// length of an image reference; zero means unbounded.
func NewSettingsService(repo *repository.SettingsRepository, maxImageSize int64) *SettingsService {
	return &SettingsService{
		repo:         repo,
		maxImageSize: maxImageSize,
	}
}

// GetSettings returns the persisted settings, ignoring any unsaved draft
func (s *SettingsService) GetSettings(ctx context.Context) (*models.ExpressionSettings, error) {
	return s.repo.Load(ctx)
}

// SetImage replaces one emotion's image in the draft. An empty ref clears it.
// Nothing is persisted until Save.
func (s *SettingsService) SetImage(ctx context.Context, emotion models.Emotion, imageRef string) error {
	if !emotion.Valid() {
		return utils.ValidationError{Field: "emotion", Message: "unknown emotion " + emotion.String()}
	}
	if err := utils.ValidateImageRef(imageRef, s.maxImageSize); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		persisted, err := s.repo.Load(ctx)
		if err != nil {
			return err
		}
		s.draft = persisted
	}
	s.draft.Images[emotion] = imageRef
	s.draft.Recompute()
	return nil
}

// Draft returns a copy of the unsaved draft, or the persisted settings when
// there is no draft
func (s *SettingsService) Draft(ctx context.Context) (*models.ExpressionSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft != nil {
		return s.draft.Clone(), nil
	}
	return s.repo.Load(ctx)
}

// DiscardDraft drops unsaved edits
func (s *SettingsService) DiscardDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// Save persists the draft. It fails with a ValidationError naming the missing
// emotions if any image is still empty; the draft is kept in that case.
func (s *SettingsService) Save(ctx context.Context) (*models.ExpressionSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.draft
	if current == nil {
		persisted, err := s.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		current = persisted
	}

	current.Recompute()
	if err := utils.ValidateSettingsComplete(current); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}

	s.draft = nil
	return current.Clone(), nil
}

// IsComplete reports whether every emotion has a persisted image. The stored
// completeness flag is not trusted.
func (s *SettingsService) IsComplete(ctx context.Context) (bool, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	return settings.AllSet(), nil
}
