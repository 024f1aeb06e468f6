package models

// ExpressionSettings holds the reference image chosen for each emotion
type ExpressionSettings struct {
	Images   map[Emotion]string
	Complete bool
}

// NewExpressionSettings returns the empty, incomplete settings used on first run
func NewExpressionSettings() *ExpressionSettings {
	images := make(map[Emotion]string, len(AllEmotions))
	for _, e := range AllEmotions {
		images[e] = ""
	}
	return &ExpressionSettings{Images: images}
}

// AllSet reports whether every category has a non-empty image
func (s *ExpressionSettings) AllSet() bool {
	return len(s.Missing()) == 0
}

// Missing lists the categories without an image, in canonical order
func (s *ExpressionSettings) Missing() []Emotion {
	var missing []Emotion
	for _, e := range AllEmotions {
		if s.Images[e] == "" {
			missing = append(missing, e)
		}
	}
	return missing
}

// Recompute derives Complete from the images
func (s *ExpressionSettings) Recompute() {
	s.Complete = s.AllSet()
}

// Clone returns a deep copy
func (s *ExpressionSettings) Clone() *ExpressionSettings {
	c := NewExpressionSettings()
	for _, e := range AllEmotions {
		c.Images[e] = s.Images[e]
	}
	c.Complete = s.Complete
	return c
}
