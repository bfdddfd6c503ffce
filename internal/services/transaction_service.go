package services

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dompetku/backend/internal/ledger"
	"github.com/dompetku/backend/internal/models"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

type TransactionService struct {
	db         *sql.DB
	validator  *validator.Validate
	categories ledger.Categories
}

func NewTransactionService(db *sql.DB, categories ledger.Categories) *TransactionService {
	return &TransactionService{
		db:         db,
		validator:  validator.New(),
		categories: categories,
	}
}

// ListTransactions returns a page of the caller's ledger, newest first.
// Supports type, category and month/year filters.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Param type query string false "income or expense"
// @Param category query string false "Category filter"
// @Param month query int false "Month filter (requires year)"
// @Param year query int false "Year filter (requires month)"
// @Success 200 {object} Envelope
// @Router /transactions [get]
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if txType := q.Get("type"); txType != "" {
		if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
			SendErrorResponse(w, "Invalid transaction type", http.StatusBadRequest, nil)
			return
		}
		args = append(args, txType)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if category := q.Get("category"); category != "" {
		args = append(args, category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Get("month") != "" && q.Get("year") != "" {
		period, err := periodFromQuery(q.Get("month"), q.Get("year"))
		if err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		args = append(args, period.Start())
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
		args = append(args, period.End())
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	err := ts.db.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM transactions WHERE "+whereClause, args...).Scan(&total)
	if err != nil {
		log.Printf("[TRANSACTIONS] Count failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, amount, type, category, description, date, account_id, destination_account_id, receipt_url, created_at, updated_at
		FROM transactions
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := ts.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		log.Printf("[TRANSACTIONS] List failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var t models.Transaction
		var dest, receipt sql.NullString
		if err := rows.Scan(&t.ID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date,
			&t.AccountID, &dest, &receipt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			log.Printf("[TRANSACTIONS] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
			return
		}
		if dest.Valid {
			t.DestinationAccountID = &dest.String
		}
		if receipt.Valid {
			t.ReceiptURL = &receipt.String
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[TRANSACTIONS] Row iteration failed: %v", err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, models.TransactionList{
		Transactions: transactions,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// CreateTransaction records a single income or expense row
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body models.TransactionRequest true "Transaction data"
// @Success 201 {object} Envelope
// @Router /transactions [post]
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.TransactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.Struct(&req); err != nil {
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

	now := time.Now().UTC()
	var t models.Transaction
	var dest, receipt sql.NullString
	err = ts.db.QueryRowContext(r.Context(), `
		INSERT INTO transactions (user_id, amount, type, category, description, date, account_id, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, amount, type, category, description, date, account_id, destination_account_id, receipt_url, created_at, updated_at`,
		userID, amount, req.Type, req.Category, req.Description, date, req.AccountID, req.ReceiptURL, now).
		Scan(&t.ID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date,
			&t.AccountID, &dest, &receipt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		log.Printf("[TRANSACTIONS] Create failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create transaction", http.StatusInternalServerError, nil)
		return
	}
	if dest.Valid {
		t.DestinationAccountID = &dest.String
	}
	if receipt.Valid {
		t.ReceiptURL = &receipt.String
	}

	SendMessageResponse(w, http.StatusCreated, "Transaction created successfully", t)
}

// CreateTransfer moves money between two accounts by inserting the linked
// transfer-pair atomically: an expense row posted to the source account and
// an income row posted to the destination, both carrying the transfer
// category so regular totals never see them.
// @Summary Transfer between accounts
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body models.TransferRequest true "Transfer data"
// @Success 201 {object} Envelope
// @Router /transactions/transfer [post]
func (ts *TransactionService) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.TransferRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.Struct(&req); err != nil {
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

	dbTx, err := ts.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Printf("[TRANSACTIONS] Begin transfer failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create transfer", http.StatusInternalServerError, nil)
		return
	}
	defer dbTx.Rollback()

	now := time.Now().UTC()
	// expense leg on the source account, pointing at the destination
	_, err = dbTx.ExecContext(r.Context(), `
		INSERT INTO transactions (user_id, amount, type, category, description, date, account_id, destination_account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		userID, amount, models.TransactionTypeExpense, ts.categories.Transfer, req.Description, date,
		req.FromAccountID, req.ToAccountID, now)
	if err == nil {
		// income leg on the destination account, pointing back at the source
		_, err = dbTx.ExecContext(r.Context(), `
			INSERT INTO transactions (user_id, amount, type, category, description, date, account_id, destination_account_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			userID, amount, models.TransactionTypeIncome, ts.categories.Transfer, req.Description, date,
			req.ToAccountID, req.FromAccountID, now)
	}
	if err == nil {
		err = dbTx.Commit()
	}
	if err != nil {
		log.Printf("[TRANSACTIONS] Transfer failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create transfer", http.StatusInternalServerError, nil)
		return
	}

	SendMessageResponse(w, http.StatusCreated, "Transfer created successfully", nil)
}

// UpdateTransaction patches the given fields of one transaction
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body models.TransactionUpdateRequest true "Fields to update"
// @Success 200 {object} Envelope
// @Router /transactions/{id} [put]
func (ts *TransactionService) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.TransactionUpdateRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Amount != nil {
		amount, err := ParseAmount(*req.Amount)
		if err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		add("amount", amount)
	}
	if req.Type != nil {
		add("type", *req.Type)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			SendErrorResponse(w, "Invalid date", http.StatusBadRequest, nil)
			return
		}
		add("date", date)
	}
	if req.AccountID != nil {
		add("account_id", *req.AccountID)
	}
	if len(set) == 0 {
		SendErrorResponse(w, "No fields to update", http.StatusBadRequest, nil)
		return
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE transactions SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, amount, type, category, description, date, account_id, destination_account_id, receipt_url, created_at, updated_at`,
		strings.Join(set, ", "), len(args)-1, len(args))

	var t models.Transaction
	var dest, receipt sql.NullString
	err := ts.db.QueryRowContext(r.Context(), query, args...).
		Scan(&t.ID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date,
			&t.AccountID, &dest, &receipt, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Transaction not found or user not authorized", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[TRANSACTIONS] Update failed for transaction %s: %v", id, err)
		SendErrorResponse(w, "Failed to update transaction", http.StatusInternalServerError, nil)
		return
	}
	if dest.Valid {
		t.DestinationAccountID = &dest.String
	}
	if receipt.Valid {
		t.ReceiptURL = &receipt.String
	}

	SendMessageResponse(w, http.StatusOK, "Transaction updated successfully", t)
}

// DeleteTransaction removes one transaction
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} Envelope
// @Router /transactions/{id} [delete]
func (ts *TransactionService) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := ts.db.ExecContext(r.Context(),
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Printf("[TRANSACTIONS] Delete failed for transaction %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete transaction", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Transaction not found or user not authorized", http.StatusNotFound, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Transaction deleted successfully", nil)
}

// ResetTransactions wipes the caller's entire ledger
// @Summary Delete all transactions
// @Tags transactions
// @Produce json
// @Success 200 {object} Envelope
// @Router /transactions/reset [post]
func (ts *TransactionService) ResetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if _, err := ts.db.ExecContext(r.Context(),
		`DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		log.Printf("[TRANSACTIONS] Reset failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to reset transactions", http.StatusInternalServerError, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "All transactions have been reset successfully", nil)
}

// parseDate accepts RFC 3339 or plain dates; empty means now
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// periodFromQuery parses and validates month/year query parameters
func periodFromQuery(monthStr, yearStr string) (ledger.Period, error) {
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid month %q", monthStr)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid year %q", yearStr)
	}
	return ledger.NewPeriod(month, year)
}
