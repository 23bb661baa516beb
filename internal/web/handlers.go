package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trackpal/internal/apperr"
	"trackpal/internal/export"
	"trackpal/internal/model"
	"trackpal/internal/service"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Jobs

func (s *Server) handleStreakJob(c *gin.Context) {
	report, err := s.svc.Streaks.EvaluateAll(c.Request.Context(), s.opts.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

func (s *Server) handleReminderJob(c *gin.Context) {
	report, err := s.svc.Reminders.SendReminders(c.Request.Context(), s.opts.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// Profiles

func (s *Server) handleCreateProfile(c *gin.Context) {
	var input service.ProfileInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := s.svc.Profiles.CreateProfile(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.svc.Profiles.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

type budgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleSetMonthlyBudget(c *gin.Context) {
	var req budgetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.Finance.SetMonthlyBudget(c.Request.Context(), currentUser(c), req.Amount); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"monthly_budget": req.Amount})
}

// Goals

func (s *Server) handleListGoals(c *gin.Context) {
	var (
		goals []model.Goal
		err   error
	)
	switch c.Query("week") {
	case "current":
		goals, err = s.svc.Goals.ListWeek(c.Request.Context(), currentUser(c), s.opts.Now())
	case "":
		goals, err = s.svc.Goals.ListGoals(c.Request.Context(), currentUser(c))
	default:
		err = apperr.Invalid("week", "only week=current is supported")
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	respondOK(c, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var input service.GoalInput
	if !bindJSON(c, &input) {
		return
	}
	goal, err := s.svc.Goals.CreateGoal(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	goal, err := s.svc.Goals.GetGoal(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.GoalInput
	if !bindJSON(c, &input) {
		return
	}
	goal, err := s.svc.Goals.UpdateGoal(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Goals.DeleteGoal(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

type toggleRequest struct {
	Completed *bool `json:"completed"`
}

func (s *Server) handleToggleSubtask(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req toggleRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Completed == nil {
		respondError(c, apperr.Invalid("completed", "completed is required"))
		return
	}
	goal, err := s.svc.Goals.ToggleSubtask(c.Request.Context(), currentUser(c), id, *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, goal)
}

func (s *Server) handleWeeklyProgress(c *gin.Context) {
	progress, err := s.svc.Goals.WeeklyProgress(c.Request.Context(), currentUser(c), s.opts.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, progress)
}

// Transactions

func transactionQuery(c *gin.Context) service.TransactionQuery {
	return service.TransactionQuery{
		Month:    c.Query("month"),
		Category: model.TransactionCategory(c.Query("category")),
		Source:   c.Query("source"),
	}
}

func (s *Server) handleListTransactions(c *gin.Context) {
	txs, err := s.svc.Finance.ListTransactions(c.Request.Context(), currentUser(c), transactionQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	respondOK(c, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	var input service.TransactionInput
	if !bindJSON(c, &input) {
		return
	}
	tx, err := s.svc.Finance.CreateTransaction(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.TransactionInput
	if !bindJSON(c, &input) {
		return
	}
	tx, err := s.svc.Finance.UpdateTransaction(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Finance.DeleteTransaction(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) handleFinanceSummary(c *gin.Context) {
	summary, err := s.svc.Finance.Summary(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, apperr.Invalid("format", err.Error()))
		return
	}
	txs, err := s.svc.Finance.ListTransactions(c.Request.Context(), currentUser(c), transactionQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	now := s.opts.Now()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, txs, now); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(now)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Budget

type budgetCategoryRequest struct {
	Category string          `json:"category"`
	Budget   decimal.Decimal `json:"budget"`
}

func (s *Server) handleListBudgetCategories(c *gin.Context) {
	categories, err := s.svc.Finance.ListBudgetCategories(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []model.BudgetCategory{}
	}
	respondOK(c, http.StatusOK, categories)
}

func (s *Server) handleAddBudgetCategory(c *gin.Context) {
	var req budgetCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.svc.Finance.AddBudgetCategory(c.Request.Context(), currentUser(c), req.Category, req.Budget)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, category)
}

func (s *Server) handleDeleteBudgetCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Finance.DeleteBudgetCategory(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) handleBudgetOverview(c *gin.Context) {
	overview, err := s.svc.Finance.BudgetOverview(c.Request.Context(), currentUser(c), s.opts.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, overview)
}

// Routine

func (s *Server) handleRoutineDay(c *gin.Context) {
	day, err := s.svc.Routine.Day(c.Request.Context(), currentUser(c), s.opts.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	if day.Tasks == nil {
		day.Tasks = []model.RoutineTask{}
	}
	respondOK(c, http.StatusOK, day)
}

func (s *Server) handleAddRoutineTask(c *gin.Context) {
	var input service.RoutineInput
	if !bindJSON(c, &input) {
		return
	}
	task, err := s.svc.Routine.AddTask(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, task)
}

func (s *Server) handleToggleRoutineTask(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req toggleRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Completed == nil {
		respondError(c, apperr.Invalid("completed", "completed is required"))
		return
	}
	task, err := s.svc.Routine.SetCompleted(c.Request.Context(), currentUser(c), id, *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, task)
}

func (s *Server) handleDeleteRoutineTask(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Routine.DeleteTask(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
