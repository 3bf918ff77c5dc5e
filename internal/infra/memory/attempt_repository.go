package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// AttemptRepository is an in-memory implementation of app.AttemptRepository.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]domain.QuizAttempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{attempts: make(map[string]domain.QuizAttempt)}
}

func (r *AttemptRepository) Create(_ context.Context, attempt *domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.ID] = cloneAttempt(*attempt)
	return nil
}

func (r *AttemptRepository) Get(_ context.Context, attemptID string) (domain.QuizAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempt, ok := r.attempts[attemptID]
	if !ok {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	return cloneAttempt(attempt), nil
}

func (r *AttemptRepository) Update(_ context.Context, attempt *domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attempts[attempt.ID]; !ok {
		return domain.ErrAttemptNotFound
	}
	r.attempts[attempt.ID] = cloneAttempt(*attempt)
	return nil
}

func (r *AttemptRepository) ByUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.QuizAttempt
	for _, attempt := range r.attempts {
		if attempt.UserID == userID {
			result = append(result, cloneAttempt(attempt))
		}
	}
	// Newest first, matching the API's attempt-history ordering.
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.After(result[j].StartTime)
	})
	return result, nil
}

func (r *AttemptRepository) CountByUserAndQuiz(_ context.Context, userID, quizID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, attempt := range r.attempts {
		if attempt.UserID == userID && attempt.QuizID == quizID {
			count++
		}
	}
	return count, nil
}

func (r *AttemptRepository) InProgress(_ context.Context) ([]domain.QuizAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.QuizAttempt
	for _, attempt := range r.attempts {
		if attempt.Status == domain.AttemptInProgress {
			result = append(result, cloneAttempt(attempt))
		}
	}
	return result, nil
}

// cloneAttempt copies the answer and badge slices so callers cannot mutate
// stored state through a returned attempt.
func cloneAttempt(a domain.QuizAttempt) domain.QuizAttempt {
	a.Answers = append([]domain.Answer(nil), a.Answers...)
	a.EarnedBadges = append([]domain.EarnedBadge(nil), a.EarnedBadges...)
	return a
}
