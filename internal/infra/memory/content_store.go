package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// ContentStore is an in-memory implementation of app.QuizStore,
// app.QuestionStore and app.UserRepository, used by tests and demo mode.
type ContentStore struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	questions map[string]domain.Question
	order     []string // question insertion order, per-quiz ordering source
	users     map[string]domain.User
	userOrder []string
}

func NewContentStore() *ContentStore {
	return &ContentStore{
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string]domain.Question),
		users:     make(map[string]domain.User),
	}
}

func (s *ContentStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *ContentStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		result = append(result, quiz)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *ContentStore) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *ContentStore) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *ContentStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *ContentStore) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (s *ContentStore) ByQuiz(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Question
	for _, id := range s.order {
		if question, ok := s.questions[id]; ok && question.QuizID == quizID {
			result = append(result, question)
		}
	}
	return result, nil
}

func (s *ContentStore) CreateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		s.order = append(s.order, question.ID)
	}
	s.questions[question.ID] = *question
	return nil
}

func (s *ContentStore) UpdateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[question.ID] = *question
	return nil
}

func (s *ContentStore) DeleteQuestion(_ context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, questionID)
	return nil
}

func (s *ContentStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.User, 0, len(s.users))
	for _, id := range s.userOrder {
		result = append(result, s.users[id])
	}
	return result, nil
}

// PutUser seeds or refreshes a user record.
func (s *ContentStore) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		s.userOrder = append(s.userOrder, user.ID)
	}
	s.users[user.ID] = user
}
