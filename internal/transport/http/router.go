package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/app"
)

// NewRouter wires the REST and websocket surfaces. CORS is wide open because
// the mobile client calls from app-embedded webviews and dev tooling.
func NewRouter(attempts *app.AttemptService, content *app.ContentService, leaderboard *app.LeaderboardService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})

	attemptHandler := NewAttemptHandler(attempts, leaderboard)
	contentHandler := NewContentHandler(content)
	wsHandler := NewWSHandler(leaderboard)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/attempts", attemptHandler.Start)
		v1.POST("/attempts/submit", attemptHandler.Submit)
		v1.GET("/attempts/leaderboard", attemptHandler.Leaderboard)
		v1.GET("/attempts/user/:userId", attemptHandler.ByUser)
		v1.GET("/attempts/:id", attemptHandler.Get)
		v1.PATCH("/attempts/:id/question", attemptHandler.AnswerQuestion)

		v1.GET("/quizzes", contentHandler.ListQuizzes)
		v1.POST("/quizzes", contentHandler.CreateQuiz)
		v1.GET("/quizzes/:id", contentHandler.GetQuiz)
		v1.PATCH("/quizzes/:id", contentHandler.UpdateQuiz)
		v1.DELETE("/quizzes/:id", contentHandler.DeleteQuiz)

		v1.GET("/questions/quiz/:quizId", contentHandler.QuestionsByQuiz)
		v1.POST("/questions", contentHandler.CreateQuestion)
		v1.GET("/questions/:id", contentHandler.GetQuestion)
		v1.PATCH("/questions/:id", contentHandler.UpdateQuestion)
		v1.DELETE("/questions/:id", contentHandler.DeleteQuestion)
	}

	router.GET("/ws/leaderboard", wsHandler.ServeLeaderboard)

	return router
}
