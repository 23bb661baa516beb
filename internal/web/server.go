// Package web exposes the TrackPal JSON API over gin.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackpal/internal/logger"
	"trackpal/internal/service"
)

// Services bundles what the handlers call into.
type Services struct {
	Profiles  *service.ProfileService
	Goals     *service.GoalService
	Streaks   *service.StreakService
	Reminders *service.ReminderService
	Finance   *service.FinanceService
	Routine   *service.RoutineService
}

// Options tune the server.
type Options struct {
	// JobSecret, when set, must be sent as "Authorization: Bearer <secret>"
	// to the job endpoints.
	JobSecret string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the TrackPal API server
type Server struct {
	svc    Services
	opts   Options
	router *gin.Engine
	http   *http.Server
}

// NewServer creates a new API server
func NewServer(svc Services, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{svc: svc, opts: opts, router: router}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/profiles", s.handleCreateProfile)

		// Scheduled jobs, also triggered by the in-process cron.
		jobs := api.Group("", s.requireJobSecret)
		jobs.GET("/update_weekly_streak", s.handleStreakJob)
		jobs.GET("/email-reminder", s.handleReminderJob)

		user := api.Group("", requireUser)
		user.GET("/profile", s.handleGetProfile)
		user.PUT("/profile/budget", s.handleSetMonthlyBudget)

		user.GET("/goals", s.handleListGoals)
		user.POST("/goals", s.handleCreateGoal)
		user.GET("/goals/progress", s.handleWeeklyProgress)
		user.GET("/goals/:id", s.handleGetGoal)
		user.PUT("/goals/:id", s.handleUpdateGoal)
		user.DELETE("/goals/:id", s.handleDeleteGoal)
		user.PATCH("/subtasks/:id", s.handleToggleSubtask)

		user.GET("/transactions", s.handleListTransactions)
		user.POST("/transactions", s.handleCreateTransaction)
		user.GET("/transactions/summary", s.handleFinanceSummary)
		user.GET("/transactions/export", s.handleExport)
		user.PUT("/transactions/:id", s.handleUpdateTransaction)
		user.DELETE("/transactions/:id", s.handleDeleteTransaction)

		user.GET("/budget/categories", s.handleListBudgetCategories)
		user.POST("/budget/categories", s.handleAddBudgetCategory)
		user.DELETE("/budget/categories/:id", s.handleDeleteBudgetCategory)
		user.GET("/budget/overview", s.handleBudgetOverview)

		user.GET("/routine", s.handleRoutineDay)
		user.POST("/routine", s.handleAddRoutineTask)
		user.PATCH("/routine/:id", s.handleToggleRoutineTask)
		user.DELETE("/routine/:id", s.handleDeleteRoutineTask)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
