package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"emotionquest/internal/models"
)

// SettingsSchemaVersion is the layout written for expressionSettings.
// Version 0 is the browser-era layout without a version field.
const SettingsSchemaVersion = 1

// ErrUnsupportedSchema is returned for records written by a newer version
var ErrUnsupportedSchema = errors.New("unsupported schema version")

type settingsRecord struct {
	SchemaVersion     int               `json:"schemaVersion"`
	CustomExpressions map[string]string `json:"customExpressions"`
	SettingsComplete  bool              `json:"settingsComplete"`
}

// SettingsRepository persists the expression image settings
type SettingsRepository struct {
	store RecordStore
}

func NewSettingsRepository(store RecordStore) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Load reads the saved settings, or the empty default if none were saved
func (r *SettingsRepository) Load(ctx context.Context) (*models.ExpressionSettings, error) {
	raw, found, err := r.store.Get(ctx, SettingsKey)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: SettingsKey, Err: err}
	}
	if !found {
		return models.NewExpressionSettings(), nil
	}

	settings, err := DecodeSettings(raw)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Key: SettingsKey, Err: err}
	}
	return settings, nil
}

// Save writes settings at the current schema version
func (r *SettingsRepository) Save(ctx context.Context, settings *models.ExpressionSettings) error {
	raw, err := EncodeSettings(settings)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: SettingsKey, Err: err}
	}
	if err := r.store.Set(ctx, SettingsKey, raw); err != nil {
		return &PersistenceError{Op: "write", Key: SettingsKey, Err: err}
	}
	return nil
}

// DecodeSettings parses a stored record. Missing categories read as empty,
// unknown categories are dropped and the completeness flag is recomputed.
func DecodeSettings(raw string) (*models.ExpressionSettings, error) {
	var rec settingsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec.SchemaVersion > SettingsSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, rec.SchemaVersion)
	}

	settings := models.NewExpressionSettings()
	for name, ref := range rec.CustomExpressions {
		e, err := models.ParseEmotion(name)
		if err != nil {
			continue
		}
		settings.Images[e] = ref
	}
	settings.Recompute()
	return settings, nil
}

// EncodeSettings renders settings in the current layout
func EncodeSettings(settings *models.ExpressionSettings) (string, error) {
	rec := settingsRecord{
		SchemaVersion:     SettingsSchemaVersion,
		CustomExpressions: make(map[string]string, len(models.AllEmotions)),
		SettingsComplete:  settings.AllSet(),
	}
	for _, e := range models.AllEmotions {
		rec.CustomExpressions[e.String()] = settings.Images[e]
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
