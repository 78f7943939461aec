package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"offsite/internal/profiling/models"
	"offsite/pkg/platform/sentinel"
)

// InMemoryStore keeps the draft slots in a map. Values are stored as the
// serialized envelope so behavior matches the durable backends byte for byte.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
	clock func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{slots: make(map[string][]byte), clock: time.Now}
}

func (s *InMemoryStore) SaveDraft(_ context.Context, record *models.ProfilingRecord) error {
	raw, err := json.Marshal(Envelope{Version: EnvelopeVersion, SavedAt: s.clock(), Record: record})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[DraftKey] = raw
	return nil
}

func (s *InMemoryStore) LoadDraft(_ context.Context) (*models.ProfilingRecord, error) {
	s.mu.RLock()
	raw, ok := s.slots[DraftKey]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return env.Record, nil
}

func (s *InMemoryStore) DeleteDraft(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, DraftKey)
	return nil
}

func (s *InMemoryStore) SaveCompanyID(_ context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[CompanyIDKey] = []byte(companyID)
	return nil
}

func (s *InMemoryStore) LoadCompanyID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.slots[CompanyIDKey]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return string(raw), nil
}
