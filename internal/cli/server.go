package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	pgstore "quiz-attempt-service/internal/infra/postgres"
	rediscache "quiz-attempt-service/internal/infra/redis"
	"quiz-attempt-service/internal/scoring"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		attempts  app.AttemptRepository
		quizzes   app.QuizStore
		questions app.QuestionStore
		users     app.UserRepository
		quizRepo  app.QuizRepository
		quizCache app.QuizCacheInvalidator
	)

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		content := pgstore.NewContentStore(db)
		attempts = pgstore.NewAttemptRepository(db)
		quizzes, questions, users = content, content, content
		quizRepo = content

		// Quiz content is read on every answer; cache it when Redis is up.
		if redisClient != nil {
			quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
			cache := rediscache.NewQuizCache(redisClient, pgstore.NewQuizLoader(pool), quizTTL)
			quizRepo = cache
			quizCache = cache
		}
	} else {
		content := memory.NewContentStore()
		seedDemoContent(content)
		attempts = memory.NewAttemptRepository()
		quizzes, questions, users = content, content, content
		quizRepo = content
	}

	var leaderboardCache app.LeaderboardCache
	if redisClient != nil {
		lbTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Minute)
		leaderboardCache = rediscache.NewLeaderboardCache(redisClient, lbTTL)
	}

	attemptService := app.NewAttemptService(attempts, quizRepo, questions, scoring.FirstMatch{})
	contentService := app.NewContentService(quizzes, questions)
	if quizCache != nil {
		contentService = contentService.WithQuizCache(quizCache)
	}
	leaderboardService := app.NewLeaderboardService(attempts, users, leaderboardCache)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runStaleSweep(sweepCtx, attemptService, config.TTLDuration(cfg.Attempt.SweepInterval, time.Minute))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(attemptService, contentService, leaderboardService),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz attempt service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runStaleSweep force-submits abandoned in_progress attempts on an interval
// so they stop blocking max-attempt checks and show up on the leaderboard.
func runStaleSweep(ctx context.Context, attempts *app.AttemptService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := attempts.ExpireStale(ctx)
			if err != nil {
				log.Printf("stale attempt sweep: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("force-submitted %d stale attempts", expired)
			}
		}
	}
}

// seedDemoContent provides a minimal data set for the no-database demo mode;
// production deployments configure postgres instead.
func seedDemoContent(content *memory.ContentStore) {
	ctx := context.Background()
	content.PutUser(domain.User{ID: "u1", Name: "Alice"})
	content.PutUser(domain.User{ID: "u2", Name: "Bob"})

	_ = content.CreateQuiz(ctx, &domain.Quiz{
		ID:              "quiz-1",
		Title:           "General Knowledge",
		Description:     "A short warm-up quiz",
		IsActive:        true,
		MaxAttempts:     3,
		DurationMinutes: 2,
		Badges: []domain.Badge{
			{Media: "uploads/badges/bronze.png", Condition: "50"},
			{Media: "uploads/badges/gold.png", Condition: "80"},
		},
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID:     "q1",
		QuizID: "quiz-1",
		Text:   "What is 2 + 2?",
		Type:   domain.QuestionMCQ,
		Points: 1,
		Options: []domain.Option{
			{Text: "3"},
			{Text: "4", Correct: true},
			{Text: "5"},
		},
		CorrectAnswer: "4",
	})
	_ = content.CreateQuestion(ctx, &domain.Question{
		ID:            "q2",
		QuizID:        "quiz-1",
		Text:          "The capital of France is ____.",
		Type:          domain.QuestionFillInBlank,
		Points:        1,
		CorrectAnswer: "Paris",
	})
}
