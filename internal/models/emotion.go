package models

import (
	"fmt"
	"strings"
)

// Emotion is one of the fixed expression categories used by settings and quizzes
type Emotion string

const (
	Happy     Emotion = "happy"
	Sad       Emotion = "sad"
	Angry     Emotion = "angry"
	Disgusted Emotion = "disgusted"
	Scared    Emotion = "scared"
)

// AllEmotions lists the categories in their canonical order
var AllEmotions = []Emotion{Happy, Sad, Angry, Disgusted, Scared}

var emotionLabels = map[Emotion]struct {
	English string
	Chinese string
}{
	Happy:     {"Happy", "开心"},
	Sad:       {"Sad", "伤心"},
	Angry:     {"Angry", "生气"},
	Disgusted: {"Disgusted", "厌恶"},
	Scared:    {"Scared", "害怕"},
}

// ParseEmotion converts a category name into an Emotion
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown emotion %q", s)
	}
	return e, nil
}

// Valid reports whether e is one of the five categories
func (e Emotion) Valid() bool {
	_, ok := emotionLabels[e]
	return ok
}

// DisplayName returns the English label
func (e Emotion) DisplayName() string {
	return emotionLabels[e].English
}

// ChineseName returns the label shown by the children's UI
func (e Emotion) ChineseName() string {
	return emotionLabels[e].Chinese
}

func (e Emotion) String() string {
	return string(e)
}
