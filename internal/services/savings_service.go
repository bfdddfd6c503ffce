package services

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dompetku/backend/internal/ledger"
	"github.com/dompetku/backend/internal/models"
)

type SavingsService struct {
	db         *sql.DB
	validator  *validator.Validate
	categories ledger.Categories
}

func NewSavingsService(db *sql.DB, categories ledger.Categories) *SavingsService {
	return &SavingsService{
		db:         db,
		validator:  validator.New(),
		categories: categories,
	}
}

// GetSavingsGoals lists goals, newest first. With month/year the list is
// narrowed to goals targeting that month plus open-ended goals.
// @Summary List savings goals
// @Tags savings
// @Produce json
// @Param month query int false "Target month filter (requires year)"
// @Param year query int false "Target year filter (requires month)"
// @Success 200 {object} Envelope
// @Router /savings [get]
func (s *SavingsService) GetSavingsGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := `
		SELECT id, name, target_amount, current_amount, target_date, created_at
		FROM savings_goals
		WHERE user_id = $1`
	args := []interface{}{userID}

	q := r.URL.Query()
	if q.Get("month") != "" && q.Get("year") != "" {
		period, err := periodFromQuery(q.Get("month"), q.Get("year"))
		if err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		query += ` AND (target_date IS NULL OR (target_date >= $2 AND target_date <= $3))`
		args = append(args, period.Start(), period.End())
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		log.Printf("[SAVINGS] List failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch savings goals", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	goals := make([]models.SavingsGoal, 0)
	for rows.Next() {
		var g models.SavingsGoal
		var targetDate sql.NullTime
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &targetDate, &g.CreatedAt); err != nil {
			log.Printf("[SAVINGS] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch savings goals", http.StatusInternalServerError, nil)
			return
		}
		if targetDate.Valid {
			g.TargetDate = &targetDate.Time
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[SAVINGS] Row iteration failed: %v", err)
		SendErrorResponse(w, "Failed to fetch savings goals", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, goals)
}

// CreateSavingsGoal creates a new savings target
// @Summary Create a savings goal
// @Tags savings
// @Accept json
// @Produce json
// @Param request body models.SavingsGoalRequest true "Goal data"
// @Success 201 {object} Envelope
// @Router /savings [post]
func (s *SavingsService) CreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.SavingsGoalRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	targetAmount, err := ParseAmount(req.TargetAmount)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	var targetDate interface{}
	if req.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			SendErrorResponse(w, "Invalid target date", http.StatusBadRequest, nil)
			return
		}
		targetDate = parsed
	}

	var g models.SavingsGoal
	var storedDate sql.NullTime
	err = s.db.QueryRowContext(r.Context(), `
		INSERT INTO savings_goals (user_id, name, target_amount, current_amount, target_date, created_at)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id, name, target_amount, current_amount, target_date, created_at`,
		userID, req.Name, targetAmount, targetDate, time.Now().UTC()).
		Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &storedDate, &g.CreatedAt)
	if err != nil {
		log.Printf("[SAVINGS] Create failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create savings goal", http.StatusInternalServerError, nil)
		return
	}
	if storedDate.Valid {
		g.TargetDate = &storedDate.Time
	}

	SendDataResponse(w, http.StatusCreated, g)
}

// AddFunds moves money from an account into a goal. The two effects commit
// together in one database transaction: the goal's current_amount grows and
// a savings-category expense row is posted to the source account. The
// reserved category keeps the movement out of the regular expense totals
// while the posted row still reduces the account's balance.
// @Summary Add funds to a savings goal
// @Tags savings
// @Accept json
// @Produce json
// @Param request body models.AddFundsRequest true "Fund transfer data"
// @Success 200 {object} Envelope
// @Router /savings/funds [post]
func (s *SavingsService) AddFunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.AddFundsRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		SendErrorResponse(w, "Invalid date", http.StatusBadRequest, nil)
		return
	}

	dbTx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Printf("[SAVINGS] Begin add-funds failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to add funds", http.StatusInternalServerError, nil)
		return
	}
	defer dbTx.Rollback()

	var goalName string
	err = dbTx.QueryRowContext(r.Context(), `
		UPDATE savings_goals
		SET current_amount = current_amount + $1
		WHERE id = $2 AND user_id = $3
		RETURNING name`,
		amount, req.GoalID, userID).Scan(&goalName)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Savings goal not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[SAVINGS] Goal update failed for goal %s: %v", req.GoalID, err)
		SendErrorResponse(w, "Failed to add funds", http.StatusInternalServerError, nil)
		return
	}

	now := time.Now().UTC()
	_, err = dbTx.ExecContext(r.Context(), `
		INSERT INTO transactions (user_id, amount, type, category, description, date, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		userID, amount, models.TransactionTypeExpense, s.categories.Savings,
		"Savings: "+goalName, date, req.AccountID, now)
	if err == nil {
		err = dbTx.Commit()
	}
	if err != nil {
		log.Printf("[SAVINGS] Add-funds failed for goal %s: %v", req.GoalID, err)
		SendErrorResponse(w, "Failed to add funds", http.StatusInternalServerError, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Funds added to savings successfully", nil)
}

// DeleteSavingsGoal removes one goal
// @Summary Delete a savings goal
// @Tags savings
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} Envelope
// @Router /savings/{id} [delete]
func (s *SavingsService) DeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.db.ExecContext(r.Context(),
		`DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Printf("[SAVINGS] Delete failed for goal %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete savings goal", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Savings goal not found", http.StatusNotFound, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Savings goal deleted successfully", nil)
}
