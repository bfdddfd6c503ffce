package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/dompetku/backend/internal/ledger"
	"github.com/dompetku/backend/internal/models"
)

const maxTrendWindow = 24

// AnalyticsService fetches already-authorized record sets from the store and
// reshapes them through the ledger engines. It never writes.
type AnalyticsService struct {
	db          *sql.DB
	categories  ledger.Categories
	trendWindow int
}

func NewAnalyticsService(db *sql.DB, categories ledger.Categories, trendWindow int) *AnalyticsService {
	if trendWindow < 1 {
		trendWindow = ledger.DefaultTrendWindow
	}
	return &AnalyticsService{
		db:          db,
		categories:  categories,
		trendWindow: trendWindow,
	}
}

// GetMonthlySummary returns the income/expense/budget summary for one month.
// Month and year default to the current period when absent.
// @Summary Monthly financial summary
// @Tags analytics
// @Produce json
// @Param month query int false "Month (defaults to current)"
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} Envelope
// @Router /analytics/summary [get]
func (s *AnalyticsService) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	period, err := s.requestedPeriod(r)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	var (
		transactions []models.Transaction
		pockets      []models.Budget
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		transactions, err = s.fetchPeriodTransactions(ctx, userID, period)
		return err
	})
	g.Go(func() error {
		var err error
		pockets, err = s.fetchBudgets(ctx, userID, period)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[ANALYTICS] Summary fetch failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to compute summary", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, ledger.ComputeMonthlySummary(transactions, pockets, period, s.categories))
}

// GetAccountBalances returns every account with its derived balance
// @Summary Account balances
// @Tags analytics
// @Produce json
// @Success 200 {object} Envelope
// @Router /analytics/balances [get]
func (s *AnalyticsService) GetAccountBalances(w http.ResponseWriter, r *http.Request) {
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
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, type, initial_balance
			FROM accounts
			WHERE user_id = $1
			ORDER BY name`, userID)
		if err != nil {
			return fmt.Errorf("query accounts: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var a models.Account
			if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance); err != nil {
				return fmt.Errorf("scan account: %w", err)
			}
			accounts = append(accounts, a)
		}
		return rows.Err()
	})
	g.Go(func() error {
		var err error
		transactions, err = fetchTransactionsForBalances(ctx, s.db, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[ANALYTICS] Balance fetch failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to compute balances", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, ledger.ComputeAllBalances(accounts, transactions))
}

// GetTrends returns the trailing months trend series. Reserved categories
// are filtered at the fetch boundary; the engine re-applies the exclusion.
// @Summary Income/expense trend series
// @Tags analytics
// @Produce json
// @Param months query int false "Window size in months (max 24)"
// @Success 200 {object} Envelope
// @Router /analytics/trends [get]
func (s *AnalyticsService) GetTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	window := s.trendWindow
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTrendWindow {
			SendErrorResponse(w, fmt.Sprintf("months must be between 1 and %d", maxTrendWindow), http.StatusBadRequest, nil)
			return
		}
		window = parsed
	}

	reference := ledger.PeriodOf(time.Now().UTC())
	windowStart := reference.AddMonths(1 - window).Start()

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT amount, type, category, date
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND NOT (category = ANY($3))`,
		userID, windowStart, pq.Array(s.categories.Names()))
	if err != nil {
		log.Printf("[ANALYTICS] Trend fetch failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to compute trends", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.Amount, &t.Type, &t.Category, &t.Date); err != nil {
			log.Printf("[ANALYTICS] Trend scan failed: %v", err)
			SendErrorResponse(w, "Failed to compute trends", http.StatusInternalServerError, nil)
			return
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[ANALYTICS] Trend iteration failed: %v", err)
		SendErrorResponse(w, "Failed to compute trends", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, ledger.ComputeTrends(transactions, window, reference, s.categories))
}

// requestedPeriod parses month/year query parameters, defaulting to the
// current month, and fails fast on malformed input.
func (s *AnalyticsService) requestedPeriod(r *http.Request) (ledger.Period, error) {
	q := r.URL.Query()
	now := time.Now().UTC()

	month, year := int(now.Month()), now.Year()
	if raw := q.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("invalid month %q", raw)
		}
		month = parsed
	}
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("invalid year %q", raw)
		}
		year = parsed
	}
	return ledger.NewPeriod(month, year)
}

func (s *AnalyticsService) fetchPeriodTransactions(ctx context.Context, userID string, period ledger.Period) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount, type, category, date, account_id, destination_account_id
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		userID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("query period transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var dest sql.NullString
		if err := rows.Scan(&t.Amount, &t.Type, &t.Category, &t.Date, &t.AccountID, &dest); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if dest.Valid {
			t.DestinationAccountID = &dest.String
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *AnalyticsService) fetchBudgets(ctx context.Context, userID string, period ledger.Period) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_name, amount, month, year, created_at, updated_at
		FROM budgets
		WHERE user_id = $1 AND month = $2 AND year = $3`,
		userID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var pockets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.CategoryName, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		pockets = append(pockets, b)
	}
	return pockets, rows.Err()
}
