package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// AttemptRepository is the bun-backed implementation of app.AttemptRepository.
type AttemptRepository struct {
	db *bun.DB
}

func NewAttemptRepository(db *bun.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.QuizAttempt) error {
	row, err := attemptToRow(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Get(ctx context.Context, attemptID string) (domain.QuizAttempt, error) {
	row := new(attemptRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", attemptID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return rowToAttempt(row)
}

func (r *AttemptRepository) Update(ctx context.Context, attempt *domain.QuizAttempt) error {
	row, err := attemptToRow(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	res, err := r.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (r *AttemptRepository) ByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	err := r.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	return rowsToAttempts(rows)
}

func (r *AttemptRepository) CountByUserAndQuiz(ctx context.Context, userID, quizID string) (int, error) {
	count, err := r.db.NewSelect().Model((*attemptRow)(nil)).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

func (r *AttemptRepository) InProgress(ctx context.Context) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	err := r.db.NewSelect().Model(&rows).
		Where("status = ?", string(domain.AttemptInProgress)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-progress attempts: %w", err)
	}
	return rowsToAttempts(rows)
}

func rowsToAttempts(rows []attemptRow) ([]domain.QuizAttempt, error) {
	attempts := make([]domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		attempt, err := rowToAttempt(&rows[i])
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}
