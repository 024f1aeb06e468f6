package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"emotionquest/internal/models"
	"emotionquest/internal/repository"
	"emotionquest/internal/utils"
)

const testImage = "data:image/png;base64,iVBORw0KGgo="

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ utils.Clock = (*fakeClock)(nil)

// flakyStore wraps a memory store and fails writes and/or reads on demand.
// failKey fails only writes touching that key; a failed SetMany writes nothing.
type flakyStore struct {
	*repository.MemoryRecordStore
	failGet bool
	failSet bool
	failKey string
}

var errStoreDown = errors.New("store unavailable")

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryRecordStore: repository.NewMemoryRecordStore()}
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errStoreDown
	}
	return s.MemoryRecordStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet || key == s.failKey {
		return errStoreDown
	}
	return s.MemoryRecordStore.Set(ctx, key, value)
}

func (s *flakyStore) SetMany(ctx context.Context, records map[string]string) error {
	if s.failSet {
		return errStoreDown
	}
	if _, ok := records[s.failKey]; ok {
		return errStoreDown
	}
	return s.MemoryRecordStore.SetMany(ctx, records)
}

// completeSettings saves an image for every emotion
func completeSettings(ctx context.Context, s *SettingsService) error {
	for _, e := range models.AllEmotions {
		if err := s.SetImage(ctx, e, testImage+"#"+e.String()); err != nil {
			return err
		}
	}
	_, err := s.Save(ctx)
	return err
}
