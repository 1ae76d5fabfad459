package testkit

import (
	"context"
	"sort"
	"sync"

	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

// InMemoryStore implements the report and prediction-log repositories in
// memory. It backs tests and deployments without a configured database.
type InMemoryStore struct {
	mu          sync.RWMutex
	reports     []ports.ReportRecord
	predictions []ports.PredictionRecord
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveReport appends a validation report record.
func (s *InMemoryStore) SaveReport(ctx context.Context, record ports.ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, record)
	return nil
}

// LatestReport returns the most recently saved record.
func (s *InMemoryStore) LatestReport(ctx context.Context) (*ports.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.reports) == 0 {
		return nil, apperrors.NotFound("validation report")
	}
	latest := s.reports[len(s.reports)-1]
	return &latest, nil
}

// Leaderboard ranks stored reports by corrected ROC-AUC descending.
func (s *InMemoryStore) Leaderboard(ctx context.Context, limit int) ([]ports.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}

	entries := make([]ports.LeaderboardEntry, 0, len(s.reports))
	for _, r := range s.reports {
		entries = append(entries, ports.LeaderboardEntry{
			RunID:           r.RunID,
			ModelName:       r.ModelName,
			CorrectedROCAUC: r.CorrectedROCAUC,
			CorrectedPRAUC:  r.CorrectedPRAUC,
			Iterations:      r.Iterations,
			CreatedAt:       r.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CorrectedROCAUC > entries[b].CorrectedROCAUC
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// LogPrediction appends a prediction record.
func (s *InMemoryStore) LogPrediction(ctx context.Context, record ports.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions = append(s.predictions, record)
	return nil
}

// Predictions returns a copy of logged predictions; test helper.
func (s *InMemoryStore) Predictions() []ports.PredictionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.PredictionRecord, len(s.predictions))
	copy(out, s.predictions)
	return out
}

var (
	_ ports.ReportRepository        = (*InMemoryStore)(nil)
	_ ports.PredictionLogRepository = (*InMemoryStore)(nil)
)
