package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/domain"
)

// ProgressStore persists client attempt progress in Redis so an interrupted
// attempt survives app restarts. Answers are stored as a JSON blob under
// attempt:{id}:answers and the countdown deadline under attempt:{id}:deadline.
// Keys are TTL-bounded as a backstop; Clear removes both on submission.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

type savedProgress struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

type savedDeadline struct {
	EndTime int64 `json:"endTime"` // unix milliseconds
}

func (s *ProgressStore) LoadAnswers(attemptID string) ([]domain.SubmittedAnswer, error) {
	raw, err := s.client.Get(context.Background(), s.answersKey(attemptID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress savedProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, err
	}
	return progress.Answers, nil
}

func (s *ProgressStore) SaveAnswers(attemptID string, answers []domain.SubmittedAnswer) error {
	data, err := json.Marshal(savedProgress{Answers: answers})
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), s.answersKey(attemptID), data, s.ttl).Err()
}

func (s *ProgressStore) LoadDeadline(attemptID string) (time.Time, bool, error) {
	raw, err := s.client.Get(context.Background(), s.deadlineKey(attemptID)).Bytes()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	var saved savedDeadline
	if err := json.Unmarshal(raw, &saved); err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(saved.EndTime), true, nil
}

func (s *ProgressStore) SaveDeadline(attemptID string, deadline time.Time) error {
	data, err := json.Marshal(savedDeadline{EndTime: deadline.UnixMilli()})
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), s.deadlineKey(attemptID), data, s.ttl).Err()
}

func (s *ProgressStore) Clear(attemptID string) error {
	return s.client.Del(context.Background(), s.answersKey(attemptID), s.deadlineKey(attemptID)).Err()
}

func (s *ProgressStore) answersKey(attemptID string) string {
	return "attempt:" + attemptID + ":answers"
}

func (s *ProgressStore) deadlineKey(attemptID string) string {
	return "attempt:" + attemptID + ":deadline"
}
