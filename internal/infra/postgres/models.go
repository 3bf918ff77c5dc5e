package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// Quiz and question content is stored as JSONB payloads keyed by ID; the
// nested shapes (badges, options) never need relational access. Attempts get
// real columns because the sweep and leaderboard queries filter on them.

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID   string          `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID       string          `bun:"id,pk"`
	QuizID   string          `bun:"quiz_id"`
	Position int             `bun:"position"`
	Data     json.RawMessage `bun:"data,type:jsonb"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID           string          `bun:"id,pk"`
	UserID       string          `bun:"user_id"`
	QuizID       string          `bun:"quiz_id"`
	Status       string          `bun:"status"`
	StartTime    time.Time       `bun:"start_time"`
	EndTime      time.Time       `bun:"end_time,nullzero"`
	TimeTaken    int             `bun:"time_taken"`
	Score        int             `bun:"score"`
	Answers      json.RawMessage `bun:"answers,type:jsonb"`
	EarnedBadges json.RawMessage `bun:"earned_badges,type:jsonb"`
}

func attemptToRow(attempt *domain.QuizAttempt) (*attemptRow, error) {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return nil, err
	}
	badges, err := json.Marshal(attempt.EarnedBadges)
	if err != nil {
		return nil, err
	}
	return &attemptRow{
		ID:           attempt.ID,
		UserID:       attempt.UserID,
		QuizID:       attempt.QuizID,
		Status:       string(attempt.Status),
		StartTime:    attempt.StartTime,
		EndTime:      attempt.EndTime,
		TimeTaken:    attempt.TimeTaken,
		Score:        attempt.Score,
		Answers:      answers,
		EarnedBadges: badges,
	}, nil
}

func rowToAttempt(row *attemptRow) (domain.QuizAttempt, error) {
	attempt := domain.QuizAttempt{
		ID:           row.ID,
		UserID:       row.UserID,
		QuizID:       row.QuizID,
		Status:       domain.AttemptStatus(row.Status),
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		TimeTaken:    row.TimeTaken,
		Score:        row.Score,
		Answers:      []domain.Answer{},
		EarnedBadges: []domain.EarnedBadge{},
	}
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &attempt.Answers); err != nil {
			return domain.QuizAttempt{}, err
		}
	}
	if len(row.EarnedBadges) > 0 {
		if err := json.Unmarshal(row.EarnedBadges, &attempt.EarnedBadges); err != nil {
			return domain.QuizAttempt{}, err
		}
	}
	return attempt, nil
}
