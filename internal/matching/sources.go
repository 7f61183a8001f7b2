package matching

import (
	"context"
	"sync"
)

// MissionSource loads missions for ranking. Implementations are read-only;
// the engine never writes through this interface.
type MissionSource interface {
	// GetMission returns the mission with the given id, or (nil, nil) when
	// no such mission exists. A non-nil error indicates an upstream failure.
	GetMission(ctx context.Context, id string) (*Mission, error)
}

// WorkerSource loads the pool of verified workers eligible for ranking.
type WorkerSource interface {
	// ListVerifiedWorkers returns every verified worker profile. An empty
	// pool is not an error.
	ListVerifiedWorkers(ctx context.Context) ([]*WorkerProfile, error)
}

// InMemoryMissionSource is an in-memory implementation of MissionSource.
// Used for testing and development.
type InMemoryMissionSource struct {
	mu       sync.RWMutex
	missions map[string]*Mission
}

// NewInMemoryMissionSource creates a new in-memory mission source.
func NewInMemoryMissionSource() *InMemoryMissionSource {
	return &InMemoryMissionSource{
		missions: make(map[string]*Mission),
	}
}

// Put stores a mission, replacing any previous one with the same id.
func (s *InMemoryMissionSource) Put(mission *Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *mission
	s.missions[mission.ID] = &copied
}

// GetMission returns the mission with the given id, or (nil, nil) if absent.
func (s *InMemoryMissionSource) GetMission(_ context.Context, id string) (*Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mission, ok := s.missions[id]
	if !ok {
		return nil, nil
	}
	// Return a copy to avoid external modification
	copied := *mission
	return &copied, nil
}

// InMemoryWorkerSource is an in-memory implementation of WorkerSource.
// Used for testing and development.
type InMemoryWorkerSource struct {
	mu      sync.RWMutex
	workers []*WorkerProfile
}

// NewInMemoryWorkerSource creates a new in-memory worker source.
func NewInMemoryWorkerSource() *InMemoryWorkerSource {
	return &InMemoryWorkerSource{}
}

// Add appends a worker profile to the pool.
func (s *InMemoryWorkerSource) Add(worker *WorkerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *worker
	s.workers = append(s.workers, &copied)
}

// ListVerifiedWorkers returns the current pool.
func (s *InMemoryWorkerSource) ListVerifiedWorkers(_ context.Context) ([]*WorkerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Return copies to avoid external modification
	result := make([]*WorkerProfile, 0, len(s.workers))
	for _, w := range s.workers {
		copied := *w
		result = append(result, &copied)
	}
	return result, nil
}
