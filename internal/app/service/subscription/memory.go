package subscription

import (
	"context"
	"sort"
	"sync"

	models "github.com/fatflowers/washplan/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local tooling. It keeps
// the same not-found/duplicate semantics as the gorm implementation.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*models.Subscription // keyed by id
	logs []*models.SubscriptionLog

	// Error fields allow tests to inject store failures.
	GetErr  error
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*models.Subscription)}
}

func cloneRecord(rec *models.Subscription) *models.Subscription {
	if rec == nil {
		return nil
	}
	cp := *rec
	return &cp
}

func (m *MemoryStore) GetByUserID(_ context.Context, userID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, rec := range m.rows {
		if rec.UserID == userID {
			return cloneRecord(rec), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if rec, ok := m.rows[id]; ok {
		return cloneRecord(rec), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Create(_ context.Context, rec *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, existing := range m.rows {
		if existing.UserID == rec.UserID {
			return ErrAlreadyExists
		}
	}
	m.rows[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *MemoryStore) Save(_ context.Context, rec *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.rows[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *MemoryStore) SaveLog(_ context.Context, log *models.SubscriptionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

// Logs returns a snapshot of the recorded change logs.
func (m *MemoryStore) Logs() []*models.SubscriptionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SubscriptionLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// Scan ignores filters and returns all rows ordered by user id. Enough for
// list-page tests; the gorm store does the real filtering.
func (m *MemoryStore) Scan(_ context.Context, req *ScanRequest) (*ScanResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	items := make([]*models.Subscription, 0, len(m.rows))
	for _, rec := range m.rows {
		items = append(items, cloneRecord(rec))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })
	total := int64(len(items))
	if req != nil {
		if req.From > 0 && req.From < len(items) {
			items = items[req.From:]
		} else if req.From >= len(items) {
			items = nil
		}
		if req.Size > 0 && req.Size < len(items) {
			items = items[:req.Size]
		}
	}
	return &ScanResponse{Items: items, Total: total}, nil
}
