package domain

import "time"

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionFillInBlank QuestionType = "fill_in_the_blank"
)

// AttemptStatus is the two-state attempt lifecycle.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Badge is a reward tied to a minimum percentage-score threshold.
// Condition stays a string to match the stored form (e.g. "80").
type Badge struct {
	Media     string `json:"media"`
	Condition string `json:"condition"`
}

// EarnedBadge records a badge granted to an attempt.
type EarnedBadge struct {
	Media     string    `json:"media"`
	Condition string    `json:"condition"`
	AwardedAt time.Time `json:"awardedAt"`
}

// Option represents one selectable answer for an MCQ question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"isCorrect"`
}

// Question belongs to exactly one quiz and is immutable during an attempt.
type Question struct {
	ID            string       `json:"id"`
	QuizID        string       `json:"quizId"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Difficulty    string       `json:"difficulty"`
	Points        int          `json:"points"` // defaults to 1 if zero
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	MediaURL      string       `json:"mediaUrl,omitempty"`
}

// Quiz is authored content: metadata, rules and the ordered badge ladder.
type Quiz struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Categories      []string  `json:"categories,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	Rules           []string  `json:"rules,omitempty"`
	Badges          []Badge   `json:"badges,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	MaxAttempts     int       `json:"maxAttempts"`
	IsActive        bool      `json:"isActive"`
	OwnerID         string    `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// User is the minimal identity needed for attempts and the leaderboard.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Answer is one recorded (question, selected answer) pair inside an attempt.
// Entries are upserted by QuestionID; re-answering overwrites, never appends.
type Answer struct {
	QuestionID     string    `json:"questionId"`
	SelectedAnswer string    `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// QuizAttempt is one user's run through a quiz, from start to submission.
type QuizAttempt struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	QuizID       string        `json:"quizId"`
	Status       AttemptStatus `json:"status"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime,omitempty"`
	TimeTaken    int           `json:"timeTaken"` // seconds, set at submission
	Score        int           `json:"score"`
	Answers      []Answer      `json:"questions"`
	EarnedBadges []EarnedBadge `json:"earnedBadges"`
}

// AnswerByQuestion returns the recorded answer for a question, if any.
func (a *QuizAttempt) AnswerByQuestion(questionID string) (Answer, bool) {
	for _, ans := range a.Answers {
		if ans.QuestionID == questionID {
			return ans, true
		}
	}
	return Answer{}, false
}

// UpsertAnswer replaces the entry for the same question or appends a new one.
func (a *QuizAttempt) UpsertAnswer(answer Answer) {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == answer.QuestionID {
			a.Answers[i] = answer
			return
		}
	}
	a.Answers = append(a.Answers, answer)
}

// SubmittedAnswer is the raw client-side form of an answer before grading.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

// SubmitResult is the outcome of final submission.
type SubmitResult struct {
	Attempt    QuizAttempt `json:"attempt"`
	Score      int         `json:"score"`
	MaxScore   int         `json:"maxScore"`
	Percentage float64     `json:"percentage"`
}

// AnswerReceipt is returned from recording a single answer mid-attempt.
type AnswerReceipt struct {
	IsCorrect     bool `json:"is_correct"`
	Score         int  `json:"score"`
	AnsweredCount int  `json:"answered_questions"`
}

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	TotalScore int    `json:"totalScore"`
}

// Leaderboard is the ranked scoreboard across all submitted attempts.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"leaderboard"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UserAttemptSummary aggregates a user's attempt history.
type UserAttemptSummary struct {
	Attempts     []QuizAttempt `json:"attempts"`
	TotalPoints  int           `json:"totalPoints"`
	HighestBadge *EarnedBadge  `json:"highestBadge,omitempty"`
}
