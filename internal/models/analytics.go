package models

import "github.com/shopspring/decimal"

// PeriodView identifies the month a summary covers
type PeriodView struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// SummaryTotals holds the headline numbers for one month. Reserved-category
// transactions (savings set-asides, transfer-pairs) are invisible to every
// field here except TotalTransferredToSavings.
type SummaryTotals struct {
	TotalIncome               decimal.Decimal `json:"total_income"`
	TotalExpenses             decimal.Decimal `json:"total_expenses"`
	Balance                   decimal.Decimal `json:"balance"`
	TotalTransferredToSavings decimal.Decimal `json:"total_transferred_to_savings"`
	TransactionCount          int             `json:"transaction_count"`
	IncomeCount               int             `json:"income_count"`
	ExpenseCount              int             `json:"expense_count"`
}

// BudgetView aggregates the month's budget pockets against spending
type BudgetView struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Details     []Budget        `json:"details"`
}

// MonthlySummaryView is the response shape of the monthly summary endpoint
type MonthlySummaryView struct {
	Period             PeriodView                 `json:"period"`
	Summary            SummaryTotals              `json:"summary"`
	Budget             BudgetView                 `json:"budget"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
}

// TrendPoint is one month of the trailing trend window. The sequence always
// has fixed length regardless of data sparsity, oldest month first.
type TrendPoint struct {
	Label      string                     `json:"label"`
	Year       int                        `json:"year"`
	Month      int                        `json:"month"`
	Income     decimal.Decimal            `json:"income"`
	Expense    decimal.Decimal            `json:"expense"`
	Categories map[string]decimal.Decimal `json:"categories"`
}
