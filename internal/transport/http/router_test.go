package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/scoring"
)

func TestAttemptLifecycleOverREST(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	// Start an attempt.
	var started struct {
		Attempt domain.QuizAttempt `json:"attempt"`
	}
	res := doJSON(t, server, http.MethodPost, "/api/v1/attempts", map[string]string{
		"user": "u1", "quiz": "quiz-1",
	}, &started)
	if res != http.StatusCreated {
		t.Fatalf("start attempt: status %d", res)
	}
	if started.Attempt.Status != domain.AttemptInProgress {
		t.Fatalf("expected in_progress attempt, got %+v", started.Attempt)
	}

	// Fetch the quiz's ordered questions.
	var fetched struct {
		Questions []domain.Question `json:"questions"`
	}
	if res := doJSON(t, server, http.MethodGet, "/api/v1/questions/quiz/quiz-1", nil, &fetched); res != http.StatusOK {
		t.Fatalf("questions by quiz: status %d", res)
	}
	if len(fetched.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(fetched.Questions))
	}

	// Answer both questions.
	attemptID := started.Attempt.ID
	var receipt domain.AnswerReceipt
	path := fmt.Sprintf("/api/v1/attempts/%s/question", attemptID)
	if res := doJSON(t, server, http.MethodPatch, path, map[string]string{
		"question_id": "q1", "selected_answer": "A",
	}, &receipt); res != http.StatusOK {
		t.Fatalf("answer q1: status %d", res)
	}
	if !receipt.IsCorrect || receipt.Score != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if res := doJSON(t, server, http.MethodPatch, path, map[string]string{
		"question_id": "q2", "selected_answer": "B",
	}, &receipt); res != http.StatusOK {
		t.Fatalf("answer q2: status %d", res)
	}

	// Final submission.
	var result domain.SubmitResult
	if res := doJSON(t, server, http.MethodPost, "/api/v1/attempts/submit", map[string]any{
		"attemptId": attemptID,
		"questions": []map[string]string{
			{"question_id": "q1", "selected_answer": "A"},
			{"question_id": "q2", "selected_answer": "B"},
		},
	}, &result); res != http.StatusOK {
		t.Fatalf("submit: status %d", res)
	}
	if result.Score != 2 || result.MaxScore != 2 {
		t.Fatalf("expected 2/2, got %+v", result)
	}

	// Second submission conflicts.
	if res := doJSON(t, server, http.MethodPost, "/api/v1/attempts/submit", map[string]any{
		"attemptId": attemptID,
	}, nil); res != http.StatusConflict {
		t.Fatalf("expected 409 on re-submit, got %d", res)
	}

	// Leaderboard reflects the submitted score.
	var lb domain.Leaderboard
	if res := doJSON(t, server, http.MethodGet, "/api/v1/attempts/leaderboard", nil, &lb); res != http.StatusOK {
		t.Fatalf("leaderboard: status %d", res)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].TotalScore != 2 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}
}

func TestAnswerValidationAndNotFound(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	var started struct {
		Attempt domain.QuizAttempt `json:"attempt"`
	}
	doJSON(t, server, http.MethodPost, "/api/v1/attempts", map[string]string{"user": "u1", "quiz": "quiz-1"}, &started)
	path := fmt.Sprintf("/api/v1/attempts/%s/question", started.Attempt.ID)

	if res := doJSON(t, server, http.MethodPatch, path, map[string]string{
		"question_id": "q1", "selected_answer": "",
	}, nil); res != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty answer, got %d", res)
	}

	if res := doJSON(t, server, http.MethodPatch, path, map[string]string{
		"question_id": "ghost", "selected_answer": "A",
	}, nil); res != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown question, got %d", res)
	}

	if res := doJSON(t, server, http.MethodGet, "/api/v1/attempts/missing", nil, nil); res != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown attempt, got %d", res)
	}
}

func TestQuizAuthoringCRUD(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	var created struct {
		Quiz domain.Quiz `json:"quiz"`
	}
	res := doJSON(t, server, http.MethodPost, "/api/v1/quizzes", map[string]any{
		"title": "Capitals", "user": "author-1",
		"badges": []map[string]string{{"media": "uploads/gold.png", "condition": "80"}},
	}, &created)
	if res != http.StatusCreated {
		t.Fatalf("create quiz: status %d", res)
	}
	if created.Quiz.ID == "" || created.Quiz.MaxAttempts != 1 {
		t.Fatalf("expected generated id and default max attempts, got %+v", created.Quiz)
	}

	var question struct {
		Question domain.Question `json:"question"`
	}
	res = doJSON(t, server, http.MethodPost, "/api/v1/questions", map[string]any{
		"quiz": created.Quiz.ID, "text": "Capital of France?", "type": "fill_in_the_blank",
		"correctAnswer": "Paris",
	}, &question)
	if res != http.StatusCreated {
		t.Fatalf("create question: status %d", res)
	}
	if question.Question.Points != 1 {
		t.Fatalf("expected default 1 point, got %+v", question.Question)
	}

	if res := doJSON(t, server, http.MethodDelete, "/api/v1/questions/"+question.Question.ID, nil, nil); res != http.StatusOK {
		t.Fatalf("delete question: status %d", res)
	}
	if res := doJSON(t, server, http.MethodDelete, "/api/v1/quizzes/"+created.Quiz.ID, nil, nil); res != http.StatusOK {
		t.Fatalf("delete quiz: status %d", res)
	}
	if res := doJSON(t, server, http.MethodGet, "/api/v1/quizzes/"+created.Quiz.ID, nil, nil); res != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", res)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	content := memory.NewContentStore()
	attempts := memory.NewAttemptRepository()
	content.PutUser(domain.User{ID: "u1", Name: "Alice"})

	_ = content.CreateQuiz(ctx, &domain.Quiz{
		ID: "quiz-1", Title: "General", IsActive: true, MaxAttempts: 3, DurationMinutes: 2,
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID: "q1", QuizID: "quiz-1", Type: domain.QuestionMCQ, CorrectAnswer: "A", Points: 1,
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID: "q2", QuizID: "quiz-1", Type: domain.QuestionMCQ, CorrectAnswer: "B", Points: 1,
	})

	attemptService := app.NewAttemptService(attempts, content, content, scoring.FirstMatch{})
	contentService := app.NewContentService(content, content)
	leaderboardService := app.NewLeaderboardService(attempts, content, nil)

	return httptest.NewServer(NewRouter(attemptService, contentService, leaderboardService))
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
	}
	return resp.StatusCode
}
