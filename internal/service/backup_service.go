package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"emotionquest/internal/repository"
	"emotionquest/internal/utils"
)

// BackupVersion is the layout of the backup file itself
const BackupVersion = "1.0"

// BackupData represents the complete backup structure
type BackupData struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exported_at"`
	StoreBackend string        `json:"store_backend"`
	Records      BackupRecords `json:"records"`
}

// BackupRecords holds the stored documents. A record that was never written
// is omitted.
type BackupRecords struct {
	ExpressionSettings json.RawMessage `json:"expressionSettings,omitempty"`
	DailyStreak        json.RawMessage `json:"dailyStreak,omitempty"`
}

// BackupService handles export and restore of the record store
type BackupService struct {
	store   repository.RecordStore
	backend string
	clock   utils.Clock
	logger  *logrus.Entry
}

// NewBackupService creates a new backup service
func NewBackupService(store repository.RecordStore, backend string, clock utils.Clock, logger *logrus.Entry) *BackupService {
	return &BackupService{
		store:   store,
		backend: backend,
		clock:   clock,
		logger:  logger,
	}
}

// Export writes a backup of every record to outputPath. No file is left
// behind when the export fails.
func (s *BackupService) Export(ctx context.Context, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			os.Remove(outputPath)
		}
	}()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}

	s.logger.WithField("path", outputPath).Info("Records exported successfully")
	return nil
}

// ExportToWriter writes a backup to w. Records are normalized to the current
// schema version on the way out.
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.clock.Now().UTC(),
		StoreBackend: s.backend,
	}

	settings, err := s.exportRecord(ctx, repository.SettingsKey, func(raw string) (string, error) {
		decoded, err := repository.DecodeSettings(raw)
		if err != nil {
			return "", err
		}
		return repository.EncodeSettings(decoded)
	})
	if err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	backup.Records.ExpressionSettings = settings

	streak, err := s.exportRecord(ctx, repository.StreakKey, func(raw string) (string, error) {
		decoded, err := repository.DecodeStreak(raw)
		if err != nil {
			return "", err
		}
		return repository.EncodeStreak(decoded)
	})
	if err != nil {
		return fmt.Errorf("failed to export streak: %w", err)
	}
	backup.Records.DailyStreak = streak

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"settings": settings != nil,
		"streak":   streak != nil,
	}).Debug("Backup written")
	return nil
}

func (s *BackupService) exportRecord(ctx context.Context, key string, normalize func(string) (string, error)) (json.RawMessage, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, &repository.PersistenceError{Op: "read", Key: key, Err: err}
	}
	if !found {
		return nil, nil
	}
	out, err := normalize(raw)
	if err != nil {
		return nil, &repository.PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return json.RawMessage(out), nil
}

// Import restores records from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	if err := s.ImportFromReader(ctx, file); err != nil {
		return err
	}

	s.logger.WithField("path", inputPath).Info("Records imported successfully")
	return nil
}

// ImportFromReader restores records from a backup reader. Every record is
// decoded before any is written, so a bad file leaves the store untouched.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.WithFields(logrus.Fields{
		"exported_at":   backup.ExportedAt,
		"store_backend": backup.StoreBackend,
	}).Info("Importing backup")

	writes := make(map[string]string, 2)

	if len(backup.Records.ExpressionSettings) > 0 {
		settings, err := repository.DecodeSettings(string(backup.Records.ExpressionSettings))
		if err != nil {
			return fmt.Errorf("invalid settings record: %w", err)
		}
		raw, err := repository.EncodeSettings(settings)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		writes[repository.SettingsKey] = raw
	}

	if len(backup.Records.DailyStreak) > 0 {
		streak, err := repository.DecodeStreak(string(backup.Records.DailyStreak))
		if err != nil {
			return fmt.Errorf("invalid streak record: %w", err)
		}
		raw, err := repository.EncodeStreak(streak)
		if err != nil {
			return fmt.Errorf("failed to encode streak: %w", err)
		}
		writes[repository.StreakKey] = raw
	}

	if len(writes) == 0 {
		return nil
	}
	if err := s.store.SetMany(ctx, writes); err != nil {
		keys := slices.Sorted(maps.Keys(writes))
		return &repository.PersistenceError{Op: "write", Key: strings.Join(keys, ","), Err: err}
	}
	return nil
}
