package service

import "errors"

// ErrSettingsIncomplete is returned when a quiz is requested before every
// emotion has a saved image
var ErrSettingsIncomplete = errors.New("expression settings are incomplete")
