// Package scoring evaluates submitted answers against quiz content and
// applies the badge ladder. All functions are pure aside from the injected
// clock, so the engine is shared by the submit path and the per-answer
// running-score recompute.
package scoring

import (
	"strings"
	"time"

	"quiz-attempt-service/internal/domain"
)

// Evaluation is the result of grading one answer set.
type Evaluation struct {
	Score      int
	MaxScore   int
	Percentage float64
	Evaluated  []domain.Answer
}

// Evaluate grades the answer set against the given question lookup.
// Answers referencing questions missing from the lookup are skipped silently;
// the caller sees them only as a lower max score. Only evaluated (answered)
// questions contribute to MaxScore. An empty evaluation yields percentage 0.
func Evaluate(questions map[string]domain.Question, answers []domain.SubmittedAnswer, now time.Time) Evaluation {
	eval := Evaluation{}
	for _, ans := range answers {
		question, ok := questions[ans.QuestionID]
		if !ok {
			continue
		}

		correct := IsCorrect(question, ans.SelectedAnswer)
		points := question.Points
		if points == 0 {
			points = 1
		}
		eval.MaxScore += points
		if correct {
			eval.Score += points
		}

		eval.Evaluated = append(eval.Evaluated, domain.Answer{
			QuestionID:     question.ID,
			SelectedAnswer: ans.SelectedAnswer,
			IsCorrect:      correct,
			AnsweredAt:     now,
		})
	}

	if eval.MaxScore > 0 {
		eval.Percentage = float64(eval.Score) / float64(eval.MaxScore) * 100
	}
	return eval
}

// IsCorrect applies the per-type comparison rule: MCQ answers must match the
// stored correct answer exactly; free-text types (true/false, fill-in-blank)
// are trimmed and compared case-insensitively.
func IsCorrect(question domain.Question, selected string) bool {
	if question.Type == domain.QuestionMCQ {
		return question.CorrectAnswer == selected
	}
	return strings.EqualFold(
		strings.TrimSpace(question.CorrectAnswer),
		strings.TrimSpace(selected),
	)
}

// RunningScore recomputes an attempt's score from scratch over all recorded
// answers. Answers to questions that have since been deleted still count a
// single default point when marked correct, matching the recorded grade.
func RunningScore(questions map[string]domain.Question, answers []domain.Answer) int {
	score := 0
	for _, ans := range answers {
		if !ans.IsCorrect {
			continue
		}
		if question, ok := questions[ans.QuestionID]; ok && question.Points > 0 {
			score += question.Points
		} else {
			score++
		}
	}
	return score
}
