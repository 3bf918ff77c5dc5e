package memory

import (
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// ProgressStore is an in-memory implementation of player.ProgressStore.
// Real clients use the Redis store so progress survives restarts; this one
// backs unit tests and single-process demos.
type ProgressStore struct {
	mu        sync.RWMutex
	answers   map[string][]domain.SubmittedAnswer
	deadlines map[string]time.Time
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		answers:   make(map[string][]domain.SubmittedAnswer),
		deadlines: make(map[string]time.Time),
	}
}

func (s *ProgressStore) LoadAnswers(attemptID string) ([]domain.SubmittedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SubmittedAnswer(nil), s.answers[attemptID]...), nil
}

func (s *ProgressStore) SaveAnswers(attemptID string, answers []domain.SubmittedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[attemptID] = append([]domain.SubmittedAnswer(nil), answers...)
	return nil
}

func (s *ProgressStore) LoadDeadline(attemptID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deadline, ok := s.deadlines[attemptID]
	return deadline, ok, nil
}

func (s *ProgressStore) SaveDeadline(attemptID string, deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[attemptID] = deadline
	return nil
}

// Clear drops both the answer cache and the timer state for the attempt.
func (s *ProgressStore) Clear(attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.answers, attemptID)
	delete(s.deadlines, attemptID)
	return nil
}
