package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/types"
)

// Store is the persistence boundary for notification preferences and the
// send log. GetPreference returns (nil, nil) when no row exists; absence is a
// normal state, not an error.
type Store interface {
	GetPreference(ctx context.Context, userID string) (*models.NotificationPreference, error)
	SavePreference(ctx context.Context, pref *models.NotificationPreference) error
	LastSentAt(ctx context.Context, userID string, event types.NotificationEvent) (*time.Time, error)
	RecordSend(ctx context.Context, entry *models.NotificationLog) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (g *gormStore) GetPreference(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preference: %w", err)
	}
	return &pref, nil
}

func (g *gormStore) SavePreference(ctx context.Context, pref *models.NotificationPreference) error {
	if err := g.db.WithContext(ctx).Save(pref).Error; err != nil {
		return fmt.Errorf("failed to save notification preference: %w", err)
	}
	return nil
}

func (g *gormStore) LastSentAt(ctx context.Context, userID string, event types.NotificationEvent) (*time.Time, error) {
	var entry models.NotificationLog
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND event_type = ? AND sent = ?", userID, string(event), true).
		Order("sent_at desc").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last notification: %w", err)
	}
	return &entry.SentAt, nil
}

func (g *gormStore) RecordSend(ctx context.Context, entry *models.NotificationLog) error {
	if err := g.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	prefs map[string]*models.NotificationPreference
	sends []*models.NotificationLog

	GetErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]*models.NotificationPreference)}
}

func (m *MemoryStore) GetPreference(_ context.Context, userID string) (*models.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	pref, ok := m.prefs[userID]
	if !ok {
		return nil, nil
	}
	cp := *pref
	return &cp, nil
}

func (m *MemoryStore) SavePreference(_ context.Context, pref *models.NotificationPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pref
	m.prefs[pref.UserID] = &cp
	return nil
}

func (m *MemoryStore) LastSentAt(_ context.Context, userID string, event types.NotificationEvent) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var latest *time.Time
	for _, entry := range m.sends {
		if entry.UserID != userID || entry.EventType != string(event) || !entry.Sent {
			continue
		}
		if latest == nil || entry.SentAt.After(*latest) {
			at := entry.SentAt
			latest = &at
		}
	}
	return latest, nil
}

func (m *MemoryStore) RecordSend(_ context.Context, entry *models.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, entry)
	return nil
}

// Sends returns a snapshot of the recorded send log.
func (m *MemoryStore) Sends() []*models.NotificationLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.NotificationLog, len(m.sends))
	copy(out, m.sends)
	return out
}
