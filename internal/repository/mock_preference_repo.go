package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/bizlink/digest-engine/internal/domain"
)

// MockPreferenceRepository is an in-memory PreferenceRepository for tests.
type MockPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]*domain.BatchingPreference

	ListEnabledErr error
}

func NewMockPreferenceRepository() *MockPreferenceRepository {
	return &MockPreferenceRepository{prefs: make(map[string]*domain.BatchingPreference)}
}

// Put stores or replaces a preference record.
func (m *MockPreferenceRepository) Put(p *domain.BatchingPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.prefs[p.AdminGroupID] = &clone
}

func (m *MockPreferenceRepository) ListEnabled(_ context.Context) ([]*domain.BatchingPreference, error) {
	if m.ListEnabledErr != nil {
		return nil, m.ListEnabledErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.BatchingPreference
	for _, p := range m.prefs {
		if p.BatchingEnabled {
			clone := *p
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AdminGroupID < result[j].AdminGroupID
	})
	return result, nil
}
