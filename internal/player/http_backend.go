package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quiz-attempt-service/internal/domain"
)

// HTTPBackend implements Backend against the REST API.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (b *HTTPBackend) StartAttempt(ctx context.Context, userID, quizID string) (domain.QuizAttempt, error) {
	body := map[string]string{"user": userID, "quiz": quizID}
	var payload struct {
		Attempt domain.QuizAttempt `json:"attempt"`
	}
	if err := b.do(ctx, http.MethodPost, "/api/v1/attempts", body, &payload); err != nil {
		return domain.QuizAttempt{}, err
	}
	return payload.Attempt, nil
}

func (b *HTTPBackend) QuestionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	var payload struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/v1/questions/quiz/"+quizID, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (b *HTTPBackend) RecordAnswer(ctx context.Context, attemptID string, answer domain.SubmittedAnswer) (domain.AnswerReceipt, error) {
	var receipt domain.AnswerReceipt
	path := "/api/v1/attempts/" + attemptID + "/question"
	if err := b.do(ctx, http.MethodPatch, path, answer, &receipt); err != nil {
		return domain.AnswerReceipt{}, err
	}
	return receipt, nil
}

func (b *HTTPBackend) SubmitAttempt(ctx context.Context, attemptID string, answers []domain.SubmittedAnswer) (domain.SubmitResult, error) {
	body := map[string]any{"attemptId": attemptID, "questions": answers}
	var result domain.SubmitResult
	if err := b.do(ctx, http.MethodPost, "/api/v1/attempts/submit", body, &result); err != nil {
		return domain.SubmitResult{}, err
	}
	return result, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrAttemptSubmitted
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", env.Message, domain.ErrAttemptNotFound)
	case resp.StatusCode >= 400:
		return fmt.Errorf("backend rejected %s %s: %s", method, path, env.Message)
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}
