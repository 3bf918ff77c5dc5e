package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/scoring"
)

func TestStartCreatesInProgressAttempt(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	attempt, err := service.Start(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if attempt.Status != domain.AttemptInProgress {
		t.Fatalf("expected in_progress, got %s", attempt.Status)
	}
	if attempt.ID == "" || attempt.StartTime.IsZero() {
		t.Fatalf("expected id and start time, got %+v", attempt)
	}
}

func TestStartRejectsInactiveQuiz(t *testing.T) {
	ctx := context.Background()
	service, content, _ := newTestService(t)

	quiz, _ := content.GetQuiz(ctx, "quiz-1")
	quiz.IsActive = false
	_ = content.UpdateQuiz(ctx, &quiz)

	if _, err := service.Start(ctx, "u1", "quiz-1"); !errors.Is(err, domain.ErrQuizInactive) {
		t.Fatalf("expected ErrQuizInactive, got %v", err)
	}
}

func TestStartEnforcesMaxAttempts(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	if _, err := service.Start(ctx, "u1", "quiz-1"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := service.Start(ctx, "u1", "quiz-1"); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if _, err := service.Start(ctx, "u1", "quiz-1"); !errors.Is(err, domain.ErrMaxAttemptsReached) {
		t.Fatalf("expected ErrMaxAttemptsReached on third start, got %v", err)
	}
}

func TestAnswerQuestionRecordsAndRecomputes(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	receipt, err := service.AnswerQuestion(ctx, attempt.ID, "q1", "A")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !receipt.IsCorrect || receipt.Score != 1 || receipt.AnsweredCount != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	// Re-answering overwrites, never appends, and the score is recomputed
	// from scratch over the full list.
	receipt, err = service.AnswerQuestion(ctx, attempt.ID, "q1", "C")
	if err != nil {
		t.Fatalf("re-answer: %v", err)
	}
	if receipt.IsCorrect || receipt.Score != 0 || receipt.AnsweredCount != 1 {
		t.Fatalf("expected last-write-wins with recomputed score, got %+v", receipt)
	}
}

func TestAnswerQuestionValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	if _, err := service.AnswerQuestion(ctx, attempt.ID, "q1", ""); !errors.Is(err, domain.ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	if _, err := service.AnswerQuestion(ctx, attempt.ID, "missing", "A"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := service.AnswerQuestion(ctx, "missing", "q1", "A"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestAnswerQuestionRejectsForeignQuizQuestion(t *testing.T) {
	ctx := context.Background()
	service, content, _ := newTestService(t)

	_ = content.CreateQuiz(ctx, &domain.Quiz{ID: "quiz-2", Title: "Other", IsActive: true, MaxAttempts: 1})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID: "other-q1", QuizID: "quiz-2", Type: domain.QuestionMCQ, CorrectAnswer: "A", Points: 1,
	})

	attempt, _ := service.Start(ctx, "u1", "quiz-1")
	if _, err := service.AnswerQuestion(ctx, attempt.ID, "other-q1", "A"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound for another quiz's question, got %v", err)
	}

	// Nothing may be recorded and the running score must stay untouched.
	got, err := service.Get(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Answers) != 0 || got.Score != 0 {
		t.Fatalf("expected clean attempt, got answers=%d score=%d", len(got.Answers), got.Score)
	}
}

func TestSubmitScoresAndAwardsFirstMatchingBadge(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	result, err := service.Submit(ctx, attempt.ID, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 2 || result.MaxScore != 2 || result.Percentage != 100 {
		t.Fatalf("expected 2/2 at 100%%, got %+v", result)
	}
	if result.Attempt.Status != domain.AttemptSubmitted {
		t.Fatalf("expected submitted status")
	}
	// Badges are declared [50, 80]; first-match awards the 50 badge even at 100%.
	if len(result.Attempt.EarnedBadges) != 1 || result.Attempt.EarnedBadges[0].Condition != "50" {
		t.Fatalf("expected first declared badge (50), got %+v", result.Attempt.EarnedBadges)
	}
}

func TestSubmitWithoutAnswersUsesServerStoredSet(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	if _, err := service.AnswerQuestion(ctx, attempt.ID, "q1", "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Timer expiry on a dead client: submit arrives with no answer set.
	result, err := service.Submit(ctx, attempt.ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.MaxScore != 1 {
		t.Fatalf("expected 1/1 from the stored answer, got %d/%d", result.Score, result.MaxScore)
	}
}

func TestSubmitTwiceIsConflictAndPreservesState(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	first, err := service.Submit(ctx, attempt.ID, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = service.Submit(ctx, attempt.ID, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "wrong"},
		{QuestionID: "q2", SelectedAnswer: "wrong"},
	})
	if !errors.Is(err, domain.ErrAttemptSubmitted) {
		t.Fatalf("expected ErrAttemptSubmitted, got %v", err)
	}

	persisted, _ := service.Get(ctx, attempt.ID)
	if persisted.Score != first.Score || len(persisted.EarnedBadges) != len(first.Attempt.EarnedBadges) {
		t.Fatalf("second submit must not change persisted score or badges")
	}
}

func TestSubmitSkipsDeletedQuestions(t *testing.T) {
	ctx := context.Background()
	service, content, _ := newTestService(t)
	attempt, _ := service.Start(ctx, "u1", "quiz-1")

	if err := content.DeleteQuestion(ctx, "q2"); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	result, err := service.Submit(ctx, attempt.ID, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.MaxScore != 1 || len(result.Attempt.Answers) != 1 {
		t.Fatalf("expected deleted question skipped, got %+v", result)
	}
}

func TestAttemptsByUserAggregates(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	a1, _ := service.Start(ctx, "u1", "quiz-1")
	if _, err := service.Submit(ctx, a1.ID, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswer: "B"},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	summary, err := service.AttemptsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("attempts by user: %v", err)
	}
	if len(summary.Attempts) != 1 || summary.TotalPoints != 2 {
		t.Fatalf("expected one attempt totalling 2 points, got %+v", summary)
	}
	if summary.HighestBadge == nil || summary.HighestBadge.Condition != "50" {
		t.Fatalf("expected highest badge 50, got %+v", summary.HighestBadge)
	}
}

func TestExpireStaleForceSubmitsAbandonedAttempts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	service, _, _ := newTestServiceWithClock(t, clock.Now)

	attempt, _ := service.Start(ctx, "u1", "quiz-1")
	if _, err := service.AnswerQuestion(ctx, attempt.ID, "q1", "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Not yet past twice the quiz duration.
	clock.t = now.Add(5 * time.Minute)
	if expired, _ := service.ExpireStale(ctx); expired != 0 {
		t.Fatalf("expected no expiry inside the grace window, got %d", expired)
	}

	clock.t = now.Add(25 * time.Minute)
	expired, err := service.ExpireStale(ctx)
	if err != nil || expired != 1 {
		t.Fatalf("expected one expired attempt, got %d err=%v", expired, err)
	}

	final, _ := service.Get(ctx, attempt.ID)
	if final.Status != domain.AttemptSubmitted || final.Score != 1 {
		t.Fatalf("expected force-submitted attempt with score from stored answers, got %+v", final)
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*app.AttemptService, *memory.ContentStore, *memory.AttemptRepository) {
	t.Helper()
	return newTestServiceWithClock(t, time.Now)
}

func newTestServiceWithClock(t *testing.T, now func() time.Time) (*app.AttemptService, *memory.ContentStore, *memory.AttemptRepository) {
	t.Helper()
	ctx := context.Background()
	content := memory.NewContentStore()
	attempts := memory.NewAttemptRepository()

	_ = content.CreateQuiz(ctx, &domain.Quiz{
		ID:              "quiz-1",
		Title:           "General knowledge",
		DurationMinutes: 2,
		MaxAttempts:     2,
		IsActive:        true,
		Badges: []domain.Badge{
			{Media: "uploads/bronze.png", Condition: "50"},
			{Media: "uploads/gold.png", Condition: "80"},
		},
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID: "q1", QuizID: "quiz-1", Type: domain.QuestionMCQ, CorrectAnswer: "A", Points: 1,
		Options: []domain.Option{{Text: "A", Correct: true}, {Text: "C"}},
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID: "q2", QuizID: "quiz-1", Type: domain.QuestionMCQ, CorrectAnswer: "B", Points: 1,
		Options: []domain.Option{{Text: "B", Correct: true}, {Text: "D"}},
	})

	service := app.NewAttemptService(attempts, content, content, scoring.FirstMatch{}).WithClock(now)
	return service, content, attempts
}
