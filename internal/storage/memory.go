package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/mocapboston/onboarding/internal/models"
)

// MemoryStore holds all sessions in memory (tests and local development)
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

// Put stores a copy of the session, standing in for the capture pipeline
func (m *MemoryStore) Put(session *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := *session
	s.ID = models.NormalizeSessionID(s.ID)
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	m.sessions[s.ID] = &s
}

// LoadSeedFile reads a YAML list of sessions into the store
func (m *MemoryStore) LoadSeedFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var sessions []models.Session
	if err := yaml.Unmarshal(data, &sessions); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range sessions {
		if sessions[i].ID == "" {
			return i, fmt.Errorf("seed entry %d has no id", i)
		}
		m.Put(&sessions[i])
	}
	return len(sessions), nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	s := *session
	return &s, nil
}

func (m *MemoryStore) MergeSession(ctx context.Context, id string, patch models.SessionPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	if patch.IsEmpty() {
		return nil
	}
	patch.Apply(session)
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ListGallery(ctx context.Context, limit int) ([]*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*models.Session
	for _, session := range m.sessions {
		if !session.InGallery() {
			continue
		}
		s := *session
		results = append(results, &s)
	}

	sortNewestFirst(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() error {
	return nil
}

// sortNewestFirst orders by UpdatedAt descending, id ascending on ties
func sortNewestFirst(sessions []*models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
}
