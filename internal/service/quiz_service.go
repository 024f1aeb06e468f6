package service

import (
	"context"

	"emotionquest/internal/models"
	"emotionquest/internal/utils"
)

// SettingsReader supplies the persisted expression settings
type SettingsReader interface {
	GetSettings(ctx context.Context) (*models.ExpressionSettings, error)
}

// QuizService builds randomized question sets for the mini-games
type QuizService struct {
	settings SettingsReader
	rng      utils.RandomSource
}

// NewQuizService creates a new quiz service
func NewQuizService(settings SettingsReader, rng utils.RandomSource) *QuizService {
	return &QuizService{
		settings: settings,
		rng:      rng,
	}
}

// GenerateQuestions returns count questions. It fails with
// ErrSettingsIncomplete before drawing anything if an emotion has no image.
func (s *QuizService) GenerateQuestions(ctx context.Context, count int) ([]models.QuizQuestion, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.AllSet() {
		return nil, ErrSettingsIncomplete
	}
	if err := utils.ValidateQuestionCount(count); err != nil {
		return nil, err
	}

	questions := make([]models.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, s.newQuestion(i, settings.Images))
	}
	return questions, nil
}

func (s *QuizService) newQuestion(id int, images map[models.Emotion]string) models.QuizQuestion {
	target := s.randomEmotion()

	// Draw distractors and reject repeats until enough distinct ones are found
	picked := map[models.Emotion]bool{target: true}
	options := make([]models.QuizOption, 0, models.OptionsPerQuestion)
	for len(options) < models.OptionsPerQuestion-1 {
		e := s.randomEmotion()
		if picked[e] {
			continue
		}
		picked[e] = true
		options = append(options, models.QuizOption{Expression: e, ImageURL: images[e]})
	}
	options = append(options, models.QuizOption{Expression: target, ImageURL: images[target]})

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return models.QuizQuestion{
		ID:         id,
		Expression: target,
		ImageURL:   images[target],
		Options:    options,
	}
}

func (s *QuizService) randomEmotion() models.Emotion {
	return models.AllEmotions[s.rng.IntN(len(models.AllEmotions))]
}
