package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// UserRepository enumerates users for leaderboard aggregation.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// LeaderboardCache stores a computed snapshot between refreshes.
type LeaderboardCache interface {
	Get(ctx context.Context) (domain.Leaderboard, bool)
	Set(ctx context.Context, lb domain.Leaderboard)
	Invalidate(ctx context.Context)
}

// LeaderboardService derives each user's total score across all submitted
// attempts and produces a ranked list. Ranking is totalScore descending with
// ties broken by userID ascending, which keeps the order stable across
// refreshes.
type LeaderboardService struct {
	attempts AttemptRepository
	users    UserRepository
	cache    LeaderboardCache
	now      func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(attempts AttemptRepository, users UserRepository, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{
		attempts:    attempts,
		users:       users,
		cache:       cache,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

// Snapshot returns the current leaderboard, serving from cache when fresh.
func (s *LeaderboardService) Snapshot(ctx context.Context) (domain.Leaderboard, error) {
	if s.cache != nil {
		if lb, ok := s.cache.Get(ctx); ok {
			return lb, nil
		}
	}

	lb, err := s.compute(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, lb)
	}
	return lb, nil
}

// Refresh recomputes the leaderboard, updates the cache and notifies
// subscribers. Called after every successful final submission.
func (s *LeaderboardService) Refresh(ctx context.Context) (domain.Leaderboard, error) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	lb, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	s.broadcast(lb)
	return lb, nil
}

// Subscribe returns a channel that receives leaderboard updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *LeaderboardService) broadcast(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (s *LeaderboardService) compute(ctx context.Context) (domain.Leaderboard, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		attempts, err := s.attempts.ByUser(ctx, user.ID)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		total := 0
		for _, attempt := range attempts {
			if attempt.Status == domain.AttemptSubmitted {
				total += attempt.Score
			}
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:     user.ID,
			Name:       user.Name,
			TotalScore: total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].UserID < entries[j].UserID
	})

	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}
