package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/domain"
)

// The wire format mirrors the mobile client's expectations: every response
// is an envelope of {status, data} on success or {status, message} on failure.

func respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func respondErr(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"status": "fail", "message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAttemptSubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrQuizInactive),
		errors.Is(err, domain.ErrMaxAttemptsReached):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
