package player

import (
	"context"
	"time"

	"quiz-attempt-service/internal/domain"
)

// Backend is the REST surface the attempt engine talks to. The engine treats
// it as an external collaborator; tests substitute a fake, real clients use
// HTTPBackend.
type Backend interface {
	StartAttempt(ctx context.Context, userID, quizID string) (domain.QuizAttempt, error)
	QuestionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
	RecordAnswer(ctx context.Context, attemptID string, answer domain.SubmittedAnswer) (domain.AnswerReceipt, error)
	SubmitAttempt(ctx context.Context, attemptID string, answers []domain.SubmittedAnswer) (domain.SubmitResult, error)
}

// ProgressStore persists in-progress answers and the countdown deadline,
// keyed by attempt ID, so an attempt survives app restarts. Entries live for
// the lifetime of one attempt and are cleared on successful submission.
type ProgressStore interface {
	LoadAnswers(attemptID string) ([]domain.SubmittedAnswer, error)
	SaveAnswers(attemptID string, answers []domain.SubmittedAnswer) error
	LoadDeadline(attemptID string) (time.Time, bool, error)
	SaveDeadline(attemptID string, deadline time.Time) error
	Clear(attemptID string) error
}
