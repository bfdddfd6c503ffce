package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dompetku/backend/internal/ledger"
	"github.com/dompetku/backend/internal/models"
)

type AccountService struct {
	db        *sql.DB
	validator *validator.Validate
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:        db,
		validator: validator.New(),
	}
}

// GetAccounts lists the caller's accounts with their computed balances.
// Accounts and the full transaction set are fetched concurrently, then the
// balance engine derives current_balance per account in-process.
// @Summary List accounts with balances
// @Tags accounts
// @Produce json
// @Success 200 {object} Envelope
// @Router /accounts [get]
func (s *AccountService) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var (
		accounts     []models.Account
		transactions []models.Transaction
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		accounts, err = s.fetchAccounts(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = fetchTransactionsForBalances(ctx, s.db, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[ACCOUNTS] Fetch failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch accounts", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, ledger.ComputeAllBalances(accounts, transactions))
}

// CreateAccount creates a new account
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body models.AccountRequest true "Account data"
// @Success 201 {object} Envelope
// @Router /accounts [post]
func (s *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.AccountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			SendErrorResponse(w, "Invalid initial balance", http.StatusBadRequest, nil)
			return
		}
	}

	var account models.Account
	err := s.db.QueryRowContext(r.Context(), `
		INSERT INTO accounts (user_id, name, type, initial_balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, type, initial_balance, created_at`,
		userID, req.Name, req.Type, initialBalance, time.Now().UTC()).
		Scan(&account.ID, &account.Name, &account.Type, &account.InitialBalance, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "You already have an account with this name", http.StatusConflict, nil)
			return
		}
		log.Printf("[ACCOUNTS] Create failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusCreated, account)
}

// UpdateAccount updates name, type or initial balance
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body models.AccountRequest true "Account data"
// @Success 200 {object} Envelope
// @Router /accounts/{id} [put]
func (s *AccountService) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.AccountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			SendErrorResponse(w, "Invalid initial balance", http.StatusBadRequest, nil)
			return
		}
	}

	var account models.Account
	err := s.db.QueryRowContext(r.Context(), `
		UPDATE accounts
		SET name = $1, type = $2, initial_balance = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, name, type, initial_balance, created_at`,
		req.Name, req.Type, initialBalance, id, userID).
		Scan(&account.ID, &account.Name, &account.Type, &account.InitialBalance, &account.CreatedAt)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "That account name is already taken", http.StatusConflict, nil)
			return
		}
		log.Printf("[ACCOUNTS] Update failed for account %s: %v", id, err)
		SendErrorResponse(w, "Failed to update account", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, account)
}

// DeleteAccount removes an account; blocked while transactions reference it
// as either the posting or the destination account.
// @Summary Delete an account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} Envelope
// @Router /accounts/{id} [delete]
func (s *AccountService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var count int
	err := s.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND (account_id = $2 OR destination_account_id = $2)`,
		userID, id).Scan(&count)
	if err != nil {
		log.Printf("[ACCOUNTS] Reference check failed for account %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete account", http.StatusInternalServerError, nil)
		return
	}
	if count > 0 {
		SendErrorResponse(w, fmt.Sprintf("Cannot delete account: %d related transactions exist", count), http.StatusConflict, nil)
		return
	}

	result, err := s.db.ExecContext(r.Context(),
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Printf("[ACCOUNTS] Delete failed for account %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete account", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Account deleted successfully", nil)
}

func (s *AccountService) fetchAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, initial_balance
		FROM accounts
		WHERE user_id = $1
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// fetchTransactionsForBalances pulls the minimal columns the balance engine
// needs, across the user's entire ledger.
func fetchTransactionsForBalances(ctx context.Context, db *sql.DB, userID string) ([]models.Transaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT amount, type, account_id, destination_account_id
		FROM transactions
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var dest sql.NullString
		if err := rows.Scan(&t.Amount, &t.Type, &t.AccountID, &dest); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if dest.Valid {
			t.DestinationAccountID = &dest.String
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// pathID reads and validates a UUID path parameter
func pathID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if _, err := uuid.Parse(id); err != nil {
		SendErrorResponse(w, "Invalid id", http.StatusBadRequest, nil)
		return "", false
	}
	return id, true
}

// isUniqueViolation reports whether err is a Postgres unique constraint error
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
