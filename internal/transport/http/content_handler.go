package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// ContentHandler exposes author-side quiz and question CRUD. Badge media is a
// path string resolved against the static-file base; upload mechanics live
// outside this service.
type ContentHandler struct {
	content *app.ContentService
}

func NewContentHandler(content *app.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.content.ListQuizzes(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quizzes": quizzes, "results": len(quizzes)})
}

func (h *ContentHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.content.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quiz": quiz})
}

type quizRequest struct {
	Title           string         `json:"title" binding:"required"`
	Description     string         `json:"description"`
	Categories      []string       `json:"categories"`
	Tags            []string       `json:"tags"`
	Rules           []string       `json:"rules"`
	Badges          []domain.Badge `json:"badges"`
	DurationMinutes int            `json:"durationMinutes"`
	MaxAttempts     int            `json:"maxAttempts"`
	IsActive        *bool          `json:"isActive"`
	OwnerID         string         `json:"user" binding:"required"`
}

func (r *quizRequest) toDomain(id string) domain.Quiz {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return domain.Quiz{
		ID:              id,
		Title:           r.Title,
		Description:     r.Description,
		Categories:      r.Categories,
		Tags:            r.Tags,
		Rules:           r.Rules,
		Badges:          r.Badges,
		DurationMinutes: r.DurationMinutes,
		MaxAttempts:     r.MaxAttempts,
		IsActive:        active,
		OwnerID:         r.OwnerID,
	}
}

func (h *ContentHandler) CreateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	quiz, err := h.content.CreateQuiz(c.Request.Context(), req.toDomain(""))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *ContentHandler) UpdateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	quiz, err := h.content.UpdateQuiz(c.Request.Context(), req.toDomain(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quiz": quiz})
}

func (h *ContentHandler) DeleteQuiz(c *gin.Context) {
	if err := h.content.DeleteQuiz(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *ContentHandler) QuestionsByQuiz(c *gin.Context) {
	questions, err := h.content.QuestionsByQuiz(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"questions": questions, "results": len(questions)})
}

func (h *ContentHandler) GetQuestion(c *gin.Context) {
	question, err := h.content.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"question": question})
}

type questionRequest struct {
	QuizID        string              `json:"quiz" binding:"required"`
	Text          string              `json:"text" binding:"required"`
	Type          domain.QuestionType `json:"type" binding:"required,oneof=MCQ true_false fill_in_the_blank"`
	Difficulty    string              `json:"difficulty"`
	Points        int                 `json:"points"`
	Options       []domain.Option     `json:"options"`
	CorrectAnswer string              `json:"correctAnswer" binding:"required"`
	MediaURL      string              `json:"mediaUrl"`
}

func (r *questionRequest) toDomain(id string) domain.Question {
	return domain.Question{
		ID:            id,
		QuizID:        r.QuizID,
		Text:          r.Text,
		Type:          r.Type,
		Difficulty:    r.Difficulty,
		Points:        r.Points,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		MediaURL:      r.MediaURL,
	}
}

func (h *ContentHandler) CreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	question, err := h.content.CreateQuestion(c.Request.Context(), req.toDomain(""))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"question": question})
}

func (h *ContentHandler) UpdateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	question, err := h.content.UpdateQuestion(c.Request.Context(), req.toDomain(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"question": question})
}

func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	if err := h.content.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
