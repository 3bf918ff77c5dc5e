package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive is returned when starting an attempt on a deactivated quiz.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrQuestionNotFound indicates a referenced question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotFound indicates the attempt record does not exist.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrAttemptSubmitted rejects mutations of an already-finalized attempt.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrEmptyAnswer rejects answer submissions with no selection.
	ErrEmptyAnswer = errors.New("no answer selected")
	// ErrMaxAttemptsReached is returned at attempt start when the quiz's
	// per-user attempt limit is exhausted.
	ErrMaxAttemptsReached = errors.New("maximum attempts reached for quiz")
	// ErrUserNotFound indicates an unknown user ID.
	ErrUserNotFound = errors.New("user not found")
)
