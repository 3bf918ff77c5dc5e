// Package player is the client-side attempt engine: the state machine a quiz
// screen drives while a user answers timed questions. It records answers
// locally and remotely, keeps a resumable countdown, and funnels both
// last-question submission and timer expiry into a single guarded
// finalization path.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// State is the engine's lifecycle position.
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	// StateErrored is non-terminal; the user may retry finalization and the
	// local answer cache is kept intact.
	StateErrored State = "errored"
)

// PerQuestionDuration is the fixed time budget per question.
const PerQuestionDuration = 60 * time.Second

// Engine runs one attempt from load to final submission.
type Engine struct {
	backend Backend
	store   ProgressStore
	now     func() time.Time

	mu           sync.Mutex
	attemptID    string
	quizID       string
	state        State
	questions    []domain.Question
	answers      []domain.SubmittedAnswer
	currentIndex int
	selected     string
	flushed      bool // current selection acknowledged by the server
	countdown    *Countdown
	result       *domain.SubmitResult
	submitting   bool // in-flight guard against the timer/last-question race
}

func NewEngine(backend Backend, store ProgressStore) *Engine {
	return &Engine{
		backend: backend,
		store:   store,
		now:     time.Now,
		state:   StateLoading,
	}
}

// WithClock is test-only for deterministic timers.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Load fetches the quiz's questions and restores any persisted progress for
// the attempt. A persisted deadline in the future resumes the countdown from
// the remaining delta; an expired one triggers immediate final submission;
// none computes and persists a fresh deadline of questionCount x 60s.
func (e *Engine) Load(ctx context.Context, attemptID, quizID string) error {
	questions, err := e.backend.QuestionsByQuiz(ctx, quizID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.attemptID = attemptID
	e.quizID = quizID
	e.questions = questions

	saved, err := e.store.LoadAnswers(attemptID)
	if err == nil {
		e.answers = saved
	}
	e.currentIndex = e.firstUnansweredLocked()

	deadline, ok, err := e.store.LoadDeadline(attemptID)
	if err != nil || !ok {
		deadline = e.now().Add(time.Duration(len(questions)) * PerQuestionDuration)
		_ = e.store.SaveDeadline(attemptID, deadline)
	}
	e.countdown = newCountdownWithClock(deadline, e.now)

	if e.countdown.Expired() {
		e.mu.Unlock()
		return e.Finalize(ctx)
	}

	e.state = StateInProgress
	e.mu.Unlock()
	return nil
}

// StartTimer launches the expiry watcher; when the countdown reaches zero the
// engine finalizes with whatever answers are recorded. The watcher stops when
// the context is cancelled, which callers do once the attempt is submitted.
func (e *Engine) StartTimer(ctx context.Context) {
	e.mu.Lock()
	countdown := e.countdown
	e.mu.Unlock()
	if countdown == nil {
		return
	}
	go countdown.Watch(ctx, func() {
		_ = e.Finalize(ctx)
	})
}

// Remaining reports the countdown's time left.
func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.countdown == nil {
		return 0
	}
	return e.countdown.Remaining()
}

// Select records the user's current selection without submitting it.
func (e *Engine) Select(answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = answer
	e.flushed = false
}

// SubmitAnswer submits the current selection for the current question:
// upsert into the local cache, persist, PATCH to the server, then advance —
// or finalize when this was the last question. An empty selection is rejected
// before any network call.
func (e *Engine) SubmitAnswer(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateInProgress {
		e.mu.Unlock()
		return errors.New("attempt is not in progress")
	}
	if e.selected == "" {
		e.mu.Unlock()
		return domain.ErrEmptyAnswer
	}
	if e.currentIndex >= len(e.questions) {
		e.mu.Unlock()
		return errors.New("no question to answer")
	}

	question := e.questions[e.currentIndex]
	answer := domain.SubmittedAnswer{QuestionID: question.ID, SelectedAnswer: e.selected}
	e.upsertLocked(answer)
	_ = e.store.SaveAnswers(e.attemptID, e.answers)
	attemptID := e.attemptID
	last := e.currentIndex+1 == len(e.questions)
	e.mu.Unlock()

	if _, err := e.backend.RecordAnswer(ctx, attemptID, answer); err != nil {
		return err
	}

	e.mu.Lock()
	e.flushed = true
	if last {
		e.mu.Unlock()
		return e.Finalize(ctx)
	}
	e.currentIndex++
	e.selected = ""
	e.mu.Unlock()
	return nil
}

// Finalize submits the full accumulated answer set exactly once. If the
// current question has a selection the server has not acknowledged, it is
// PATCHed first so the last answer is never lost. On success the progress
// store is cleared and the engine reaches its terminal state; on failure the
// cache is kept and the caller may retry. A conflict from the server means a
// parallel path already finalized, which the engine treats as done.
func (e *Engine) Finalize(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateSubmitted || e.submitting {
		e.mu.Unlock()
		return nil
	}
	e.submitting = true
	e.state = StateSubmitting

	// Flush the unacknowledged current selection before the final POST. The
	// flushed flag is authoritative: a re-selection of an already-answered
	// question must still reach the server or it would be silently dropped.
	var pending *domain.SubmittedAnswer
	if e.selected != "" && !e.flushed && e.currentIndex < len(e.questions) {
		question := e.questions[e.currentIndex]
		pending = &domain.SubmittedAnswer{QuestionID: question.ID, SelectedAnswer: e.selected}
	}
	attemptID := e.attemptID
	e.mu.Unlock()

	if pending != nil {
		if _, err := e.backend.RecordAnswer(ctx, attemptID, *pending); err != nil {
			if errors.Is(err, domain.ErrAttemptSubmitted) {
				return e.markSubmitted(attemptID)
			}
			return e.failSubmit(err)
		}
		e.mu.Lock()
		e.upsertLocked(*pending)
		e.flushed = true
		_ = e.store.SaveAnswers(attemptID, e.answers)
		e.mu.Unlock()
	}

	e.mu.Lock()
	answers := append([]domain.SubmittedAnswer(nil), e.answers...)
	e.mu.Unlock()

	result, err := e.backend.SubmitAttempt(ctx, attemptID, answers)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptSubmitted) {
			// Another path won the race; keep the last-known result.
			return e.markSubmitted(attemptID)
		}
		return e.failSubmit(err)
	}

	e.mu.Lock()
	e.result = &result
	e.state = StateSubmitted
	e.submitting = false
	e.mu.Unlock()
	_ = e.store.Clear(attemptID)
	return nil
}

// markSubmitted settles the engine when the server reports the attempt was
// already finalized by another path; the client treats that as done.
func (e *Engine) markSubmitted(attemptID string) error {
	e.mu.Lock()
	e.state = StateSubmitted
	e.submitting = false
	e.mu.Unlock()
	_ = e.store.Clear(attemptID)
	return nil
}

func (e *Engine) failSubmit(err error) error {
	e.mu.Lock()
	e.state = StateErrored
	e.submitting = false
	e.mu.Unlock()
	return err
}

// Retry re-runs finalization after a failure.
func (e *Engine) Retry(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateErrored {
		e.mu.Unlock()
		return errors.New("nothing to retry")
	}
	e.state = StateInProgress
	e.mu.Unlock()
	return e.Finalize(ctx)
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result returns the final submission result once submitted.
func (e *Engine) Result() (domain.SubmitResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return domain.SubmitResult{}, false
	}
	return *e.result, true
}

// CurrentQuestion returns the question at the cursor.
func (e *Engine) CurrentQuestion() (domain.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentIndex >= len(e.questions) {
		return domain.Question{}, false
	}
	return e.questions[e.currentIndex], true
}

// Progress reports (currentIndex, questionCount) for the UI header.
func (e *Engine) Progress() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentIndex, len(e.questions)
}

// Answers returns a copy of the locally recorded answers.
func (e *Engine) Answers() []domain.SubmittedAnswer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.SubmittedAnswer(nil), e.answers...)
}

func (e *Engine) upsertLocked(answer domain.SubmittedAnswer) {
	for i := range e.answers {
		if e.answers[i].QuestionID == answer.QuestionID {
			e.answers[i] = answer
			return
		}
	}
	e.answers = append(e.answers, answer)
}

// firstUnansweredLocked places the cursor for a resumed attempt: the first
// question with no recorded answer, or the last question when all are
// answered.
func (e *Engine) firstUnansweredLocked() int {
	for i, question := range e.questions {
		if _, ok := e.answerForLocked(question.ID); !ok {
			return i
		}
	}
	if len(e.questions) == 0 {
		return 0
	}
	return len(e.questions) - 1
}

func (e *Engine) answerForLocked(questionID string) (domain.SubmittedAnswer, bool) {
	for _, ans := range e.answers {
		if ans.QuestionID == questionID {
			return ans, true
		}
	}
	return domain.SubmittedAnswer{}, false
}
