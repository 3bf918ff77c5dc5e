package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

// QuizStore is the author-side persistence surface for quizzes.
type QuizStore interface {
	QuizRepository
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuestionStore is the author-side persistence surface for questions.
type QuestionStore interface {
	QuestionRepository
	CreateQuestion(ctx context.Context, question *domain.Question) error
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	DeleteQuestion(ctx context.Context, questionID string) error
}

// QuizCacheInvalidator drops cached quiz content after author-side changes
// so the attempt path never serves a stale quiz for longer than one request.
type QuizCacheInvalidator interface {
	Invalidate(ctx context.Context, quizID string)
}

// ContentService covers quiz authoring: quiz and question CRUD. Content is
// read-only to quiz-takers; attempts reference questions but never own them.
type ContentService struct {
	quizzes   QuizStore
	questions QuestionStore
	cache     QuizCacheInvalidator
	now       func() time.Time
	newID     func() string
}

func NewContentService(quizzes QuizStore, questions QuestionStore) *ContentService {
	return &ContentService{
		quizzes:   quizzes,
		questions: questions,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// WithQuizCache registers the cache to invalidate on quiz updates.
func (s *ContentService) WithQuizCache(cache QuizCacheInvalidator) *ContentService {
	s.cache = cache
	return s
}

func (s *ContentService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

func (s *ContentService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *ContentService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	if quiz.MaxAttempts == 0 {
		quiz.MaxAttempts = 1
	}
	quiz.CreatedAt = s.now()
	if err := s.quizzes.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *ContentService) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	existing, err := s.quizzes.GetQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.CreatedAt = existing.CreatedAt
	if err := s.quizzes.UpdateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, quiz.ID)
	}
	return quiz, nil
}

func (s *ContentService) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, quizID)
	}
	return nil
}

func (s *ContentService) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	return s.questions.GetQuestion(ctx, questionID)
}

// QuestionsByQuiz returns the quiz's ordered question list.
func (s *ContentService) QuestionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questions.ByQuiz(ctx, quizID)
}

func (s *ContentService) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, question.QuizID); err != nil {
		return domain.Question{}, err
	}
	if question.ID == "" {
		question.ID = s.newID()
	}
	if question.Points == 0 {
		question.Points = 1
	}
	if err := s.questions.CreateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (s *ContentService) UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if _, err := s.questions.GetQuestion(ctx, question.ID); err != nil {
		return domain.Question{}, err
	}
	if err := s.questions.UpdateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (s *ContentService) DeleteQuestion(ctx context.Context, questionID string) error {
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	return s.questions.DeleteQuestion(ctx, questionID)
}
