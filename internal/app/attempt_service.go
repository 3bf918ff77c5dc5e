package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
)

// AttemptRepository abstracts how attempts are stored (in-memory, Postgres).
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.QuizAttempt) error
	Get(ctx context.Context, attemptID string) (domain.QuizAttempt, error)
	Update(ctx context.Context, attempt *domain.QuizAttempt) error
	ByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
	CountByUserAndQuiz(ctx context.Context, userID, quizID string) (int, error)
	InProgress(ctx context.Context) ([]domain.QuizAttempt, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuestionRepository loads question content for grading.
type QuestionRepository interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
	ByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// AttemptService contains the attempt lifecycle use cases: start, per-question
// answer recording, final submission and per-user history.
type AttemptService struct {
	attempts  AttemptRepository
	quizzes   QuizRepository
	questions QuestionRepository
	badges    scoring.BadgePolicy
	now       func() time.Time
	newID     func() string
}

func NewAttemptService(attempts AttemptRepository, quizzes QuizRepository, questions QuestionRepository, badges scoring.BadgePolicy) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		quizzes:   quizzes,
		questions: questions,
		badges:    badges,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// WithClock is test-only for deterministic timestamps and IDs.
func (s *AttemptService) WithClock(now func() time.Time) *AttemptService {
	s.now = now
	return s
}

// Start creates a new in-progress attempt for (user, quiz). The quiz must
// exist and be active, and the per-user attempt limit is enforced here as a
// precondition; the scoring path never re-checks it.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (domain.QuizAttempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	if !quiz.IsActive {
		return domain.QuizAttempt{}, domain.ErrQuizInactive
	}

	if quiz.MaxAttempts > 0 {
		count, err := s.attempts.CountByUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return domain.QuizAttempt{}, err
		}
		if count >= quiz.MaxAttempts {
			return domain.QuizAttempt{}, domain.ErrMaxAttemptsReached
		}
	}

	attempt := domain.QuizAttempt{
		ID:           s.newID(),
		UserID:       userID,
		QuizID:       quizID,
		Status:       domain.AttemptInProgress,
		StartTime:    s.now(),
		Answers:      []domain.Answer{},
		EarnedBadges: []domain.EarnedBadge{},
	}
	if err := s.attempts.Create(ctx, &attempt); err != nil {
		return domain.QuizAttempt{}, err
	}
	return attempt, nil
}

// Get returns a single attempt by ID.
func (s *AttemptService) Get(ctx context.Context, attemptID string) (domain.QuizAttempt, error) {
	return s.attempts.Get(ctx, attemptID)
}

// AnswerQuestion upserts one (question, answer) pair into an in-progress
// attempt and recomputes the running score from scratch over the full
// recorded answer list. The recompute re-reads every referenced question's
// point value so the score never drifts from the stored answers.
func (s *AttemptService) AnswerQuestion(ctx context.Context, attemptID, questionID, selectedAnswer string) (domain.AnswerReceipt, error) {
	if selectedAnswer == "" {
		return domain.AnswerReceipt{}, domain.ErrEmptyAnswer
	}

	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	if attempt.Status == domain.AttemptSubmitted {
		return domain.AnswerReceipt{}, domain.ErrAttemptSubmitted
	}

	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	// An attempt only ever records answers for its own quiz's questions.
	if question.QuizID != attempt.QuizID {
		return domain.AnswerReceipt{}, domain.ErrQuestionNotFound
	}

	attempt.UpsertAnswer(domain.Answer{
		QuestionID:     questionID,
		SelectedAnswer: selectedAnswer,
		IsCorrect:      scoring.IsCorrect(question, selectedAnswer),
		AnsweredAt:     s.now(),
	})

	lookup, err := s.questionLookup(ctx, attempt.QuizID)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	attempt.Score = scoring.RunningScore(lookup, attempt.Answers)

	if err := s.attempts.Update(ctx, &attempt); err != nil {
		return domain.AnswerReceipt{}, err
	}

	recorded, _ := attempt.AnswerByQuestion(questionID)
	return domain.AnswerReceipt{
		IsCorrect:     recorded.IsCorrect,
		Score:         attempt.Score,
		AnsweredCount: len(attempt.Answers),
	}, nil
}

// Submit finalizes an attempt exactly once. The provided answer set is
// evaluated when non-empty; otherwise the attempt's server-stored answers
// are re-evaluated. Submitting an already-submitted attempt is rejected
// with ErrAttemptSubmitted so clients can treat it as "already done".
func (s *AttemptService) Submit(ctx context.Context, attemptID string, answers []domain.SubmittedAnswer) (domain.SubmitResult, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if attempt.Status == domain.AttemptSubmitted {
		return domain.SubmitResult{}, domain.ErrAttemptSubmitted
	}

	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	toEvaluate := answers
	if len(toEvaluate) == 0 {
		toEvaluate = make([]domain.SubmittedAnswer, 0, len(attempt.Answers))
		for _, ans := range attempt.Answers {
			toEvaluate = append(toEvaluate, domain.SubmittedAnswer{
				QuestionID:     ans.QuestionID,
				SelectedAnswer: ans.SelectedAnswer,
			})
		}
	}

	lookup, err := s.questionLookup(ctx, attempt.QuizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	now := s.now()
	eval := scoring.Evaluate(lookup, toEvaluate, now)

	attempt.Status = domain.AttemptSubmitted
	attempt.EndTime = now
	attempt.TimeTaken = int(now.Sub(attempt.StartTime) / time.Second)
	attempt.Score = eval.Score
	attempt.Answers = eval.Evaluated
	attempt.EarnedBadges = []domain.EarnedBadge{}
	if badge, ok := s.badges.Award(quiz.Badges, eval.Percentage, now); ok {
		attempt.EarnedBadges = append(attempt.EarnedBadges, badge)
	}

	if err := s.attempts.Update(ctx, &attempt); err != nil {
		return domain.SubmitResult{}, err
	}

	return domain.SubmitResult{
		Attempt:    attempt,
		Score:      eval.Score,
		MaxScore:   eval.MaxScore,
		Percentage: eval.Percentage,
	}, nil
}

// AttemptsByUser returns the user's attempt history, newest first, plus the
// accumulated point total and the highest-condition badge earned so far.
func (s *AttemptService) AttemptsByUser(ctx context.Context, userID string) (domain.UserAttemptSummary, error) {
	attempts, err := s.attempts.ByUser(ctx, userID)
	if err != nil {
		return domain.UserAttemptSummary{}, err
	}

	summary := domain.UserAttemptSummary{Attempts: attempts}
	var highestCondition float64
	for _, attempt := range attempts {
		summary.TotalPoints += attempt.Score
		for _, badge := range attempt.EarnedBadges {
			threshold, ok := scoring.ParseCondition(badge.Condition)
			if !ok {
				continue
			}
			if summary.HighestBadge == nil || threshold > highestCondition {
				b := badge
				summary.HighestBadge = &b
				highestCondition = threshold
			}
		}
	}
	return summary, nil
}

// ExpireStale force-submits in-progress attempts whose deadline passed more
// than twice the quiz duration ago (minimum ten minutes), scoring them from
// their stored answers. Abandoned attempts therefore do not stay open forever.
func (s *AttemptService) ExpireStale(ctx context.Context) (int, error) {
	attempts, err := s.attempts.InProgress(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	now := s.now()
	for _, attempt := range attempts {
		quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
		if err != nil {
			continue
		}
		grace := 2 * time.Duration(quiz.DurationMinutes) * time.Minute
		if grace < 10*time.Minute {
			grace = 10 * time.Minute
		}
		if now.Sub(attempt.StartTime) < grace {
			continue
		}
		if _, err := s.Submit(ctx, attempt.ID, nil); err == nil {
			expired++
		}
	}
	return expired, nil
}

func (s *AttemptService) questionLookup(ctx context.Context, quizID string) (map[string]domain.Question, error) {
	questions, err := s.questions.ByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		lookup[q.ID] = q
	}
	return lookup, nil
}
