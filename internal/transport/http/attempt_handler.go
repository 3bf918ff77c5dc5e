package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// AttemptHandler exposes the attempt lifecycle over REST.
type AttemptHandler struct {
	attempts    *app.AttemptService
	leaderboard *app.LeaderboardService
}

func NewAttemptHandler(attempts *app.AttemptService, leaderboard *app.LeaderboardService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts, leaderboard: leaderboard}
}

type startAttemptRequest struct {
	User string `json:"user" binding:"required"`
	Quiz string `json:"quiz" binding:"required"`
}

func (h *AttemptHandler) Start(c *gin.Context) {
	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	attempt, err := h.attempts.Start(c.Request.Context(), req.User, req.Quiz)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"attempt": attempt})
}

func (h *AttemptHandler) Get(c *gin.Context) {
	attempt, err := h.attempts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempt": attempt})
}

type answerRequest struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedAnswer string `json:"selected_answer"`
}

func (h *AttemptHandler) AnswerQuestion(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	receipt, err := h.attempts.AnswerQuestion(c.Request.Context(), c.Param("id"), req.QuestionID, req.SelectedAnswer)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, receipt)
}

type submitRequest struct {
	AttemptID string                   `json:"attemptId" binding:"required"`
	Questions []domain.SubmittedAnswer `json:"questions"`
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
		return
	}

	result, err := h.attempts.Submit(c.Request.Context(), req.AttemptID, req.Questions)
	if err != nil {
		respondErr(c, err)
		return
	}

	if _, err := h.leaderboard.Refresh(c.Request.Context()); err != nil {
		log.Printf("leaderboard refresh after submit: %v", err)
	}
	respond(c, http.StatusOK, result)
}

func (h *AttemptHandler) ByUser(c *gin.Context) {
	summary, err := h.attempts.AttemptsByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *AttemptHandler) Leaderboard(c *gin.Context) {
	lb, err := h.leaderboard.Snapshot(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, lb)
}
