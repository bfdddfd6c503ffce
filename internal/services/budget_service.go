package services

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dompetku/backend/internal/models"
)

type BudgetService struct {
	db        *sql.DB
	validator *validator.Validate
}

func NewBudgetService(db *sql.DB) *BudgetService {
	return &BudgetService{
		db:        db,
		validator: validator.New(),
	}
}

// GetBudgets lists the caller's budget pockets, optionally scoped to one
// month/year.
// @Summary List budget pockets
// @Tags budgets
// @Produce json
// @Param month query int false "Month filter (requires year)"
// @Param year query int false "Year filter (requires month)"
// @Success 200 {object} Envelope
// @Router /budgets [get]
func (s *BudgetService) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := `
		SELECT id, category_name, amount, month, year, created_at, updated_at
		FROM budgets
		WHERE user_id = $1`
	args := []interface{}{userID}

	q := r.URL.Query()
	if q.Get("month") != "" && q.Get("year") != "" {
		period, err := periodFromQuery(q.Get("month"), q.Get("year"))
		if err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		query += " AND month = $2 AND year = $3"
		args = append(args, period.Month, period.Year)
	}
	query += " ORDER BY category_name"

	rows, err := s.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		log.Printf("[BUDGETS] List failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch budgets", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	budgets := make([]models.Budget, 0)
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.CategoryName, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt); err != nil {
			log.Printf("[BUDGETS] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch budgets", http.StatusInternalServerError, nil)
			return
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[BUDGETS] Row iteration failed: %v", err)
		SendErrorResponse(w, "Failed to fetch budgets", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, budgets)
}

// CreateOrUpdateBudget reconciles the requested (month, year, category,
// amount) against the stored pocket. The branches are evaluated strictly in
// this order:
//
//  1. pocket exists, amount == 0  -> delete (reset semantics)
//  2. pocket exists, amount  > 0  -> update amount and timestamp
//  3. no pocket,     amount  > 0  -> create
//  4. no pocket,     amount == 0  -> no-op, success with null payload
//
// A zero-amount pocket is therefore never persisted.
// @Summary Create or update a budget pocket
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body models.BudgetRequest true "Budget data"
// @Success 200 {object} Envelope
// @Router /budgets [post]
func (s *BudgetService) CreateOrUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.BudgetRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount, err := ParseNonNegativeAmount(req.Amount)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	var existingID string
	err = s.db.QueryRowContext(r.Context(), `
		SELECT id FROM budgets
		WHERE user_id = $1 AND month = $2 AND year = $3 AND category_name = $4`,
		userID, req.Month, req.Year, req.CategoryName).Scan(&existingID)
	exists := err == nil
	if err != nil && err != sql.ErrNoRows {
		log.Printf("[BUDGETS] Lookup failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to save budget", http.StatusInternalServerError, nil)
		return
	}

	switch {
	case exists && amount.IsZero():
		if _, err := s.db.ExecContext(r.Context(),
			`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, existingID, userID); err != nil {
			log.Printf("[BUDGETS] Reset delete failed for budget %s: %v", existingID, err)
			SendErrorResponse(w, "Failed to save budget", http.StatusInternalServerError, nil)
			return
		}
		SendMessageResponse(w, http.StatusOK, "Budget reset successfully", nil)

	case exists:
		var b models.Budget
		err := s.db.QueryRowContext(r.Context(), `
			UPDATE budgets SET amount = $1, updated_at = $2
			WHERE id = $3 AND user_id = $4
			RETURNING id, category_name, amount, month, year, created_at, updated_at`,
			amount, time.Now().UTC(), existingID, userID).
			Scan(&b.ID, &b.CategoryName, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			log.Printf("[BUDGETS] Update failed for budget %s: %v", existingID, err)
			SendErrorResponse(w, "Failed to save budget", http.StatusInternalServerError, nil)
			return
		}
		SendMessageResponse(w, http.StatusOK, "Budget updated successfully", b)

	case amount.IsPositive():
		now := time.Now().UTC()
		var b models.Budget
		err := s.db.QueryRowContext(r.Context(), `
			INSERT INTO budgets (user_id, amount, month, year, category_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id, category_name, amount, month, year, created_at, updated_at`,
			userID, amount, req.Month, req.Year, req.CategoryName, now).
			Scan(&b.ID, &b.CategoryName, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			log.Printf("[BUDGETS] Create failed for user %s: %v", userID, err)
			SendErrorResponse(w, "Failed to save budget", http.StatusInternalServerError, nil)
			return
		}
		SendMessageResponse(w, http.StatusCreated, "Budget created successfully", b)

	default:
		// nothing stored, nothing requested
		SendMessageResponse(w, http.StatusOK, "Budget set to 0, no entry created", nil)
	}
}

// DeleteBudget removes one pocket by id
// @Summary Delete a budget pocket
// @Tags budgets
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} Envelope
// @Router /budgets/{id} [delete]
func (s *BudgetService) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.db.ExecContext(r.Context(),
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Printf("[BUDGETS] Delete failed for budget %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete budget", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Budget not found or user not authorized", http.StatusNotFound, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Budget pocket deleted successfully", nil)
}
