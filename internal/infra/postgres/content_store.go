package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// ContentStore is the bun-backed implementation of app.QuizStore,
// app.QuestionStore and app.UserRepository.
type ContentStore struct {
	db *bun.DB
}

func NewContentStore(db *bun.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	row := new(quizRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(row.Data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *ContentStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, row := range rows {
		var quiz domain.Quiz
		if err := json.Unmarshal(row.Data, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %s: %w", row.ID, err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (s *ContentStore) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *ContentStore) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *ContentStore) DeleteQuiz(ctx context.Context, quizID string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", quizID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *ContentStore) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	row := new(questionRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", questionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	var question domain.Question
	if err := json.Unmarshal(row.Data, &question); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	return question, nil
}

func (s *ContentStore) ByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		var question domain.Question
		if err := json.Unmarshal(row.Data, &question); err != nil {
			return nil, fmt.Errorf("unmarshal question %s: %w", row.ID, err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (s *ContentStore) CreateQuestion(ctx context.Context, question *domain.Question) error {
	position, err := s.db.NewSelect().Model((*questionRow)(nil)).
		Where("quiz_id = ?", question.QuizID).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	row, err := questionToRow(question, position)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *ContentStore) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	data, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	res, err := s.db.NewUpdate().Model((*questionRow)(nil)).
		Set("data = ?", string(data)).
		Set("quiz_id = ?", question.QuizID).
		Where("id = ?", question.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *ContentStore) DeleteQuestion(ctx context.Context, questionID string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", questionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *ContentStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User{ID: row.ID, Name: row.Name})
	}
	return users, nil
}

// PutUser inserts or refreshes a user record.
func (s *ContentStore) PutUser(ctx context.Context, user domain.User) error {
	row := &userRow{ID: user.ID, Name: user.Name}
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func quizToRow(quiz *domain.Quiz) (*quizRow, error) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz: %w", err)
	}
	return &quizRow{ID: quiz.ID, Data: data}, nil
}

func questionToRow(question *domain.Question, position int) (*questionRow, error) {
	data, err := json.Marshal(question)
	if err != nil {
		return nil, fmt.Errorf("marshal question: %w", err)
	}
	return &questionRow{ID: question.ID, QuizID: question.QuizID, Position: position, Data: data}, nil
}
