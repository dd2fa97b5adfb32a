package query

import (
	"context"
	"sync"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

// MemoryStore is an in-process LiveStore used when no database is
// configured. It starts empty; records arrive via Add helpers.
type MemoryStore struct {
	mu         sync.RWMutex
	activities []telecom.Activity
	threats    []telecom.Threat
}

// NewMemoryStore creates an empty in-memory live store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddActivities appends records to the store.
func (s *MemoryStore) AddActivities(activities ...telecom.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, activities...)
}

// AddThreats appends threats to the store.
func (s *MemoryStore) AddThreats(threats ...telecom.Threat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threats = append(s.threats, threats...)
}

func (s *MemoryStore) ListActivities(_ context.Context, userID string, limit int, since, until time.Time) ([]telecom.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filterActivities(s.activities, userID, since, until, false)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListFraudActivities(_ context.Context, userID string, since, until time.Time) ([]telecom.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterActivities(s.activities, userID, since, until, true), nil
}

func (s *MemoryStore) Stats(_ context.Context, since, until time.Time) (*telecom.ActivityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate(filterActivities(s.activities, "", since, until, false)), nil
}

func (s *MemoryStore) ListThreats(_ context.Context, f ThreatFilter) ([]telecom.Threat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []telecom.Threat{}
	for _, t := range s.threats {
		if f.Severity != "" && t.Severity != f.Severity {
			continue
		}
		if f.Type != "" && t.ThreatType != f.Type {
			continue
		}
		if !f.Since.IsZero() && t.Timestamp.Before(f.Since) {
			continue
		}
		if t.Timestamp.After(f.Until) {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
