package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dompetku/backend/internal/models"
)

// ComputeMonthlySummary aggregates one month of transactions and budget
// pockets into the monthly summary view.
//
// Transactions carrying a reserved category (savings set-asides and
// transfer-pair legs) are invisible to the regular totals, the per-category
// breakdown, and the counts. The expense legs of savings movements are
// surfaced separately as TotalTransferredToSavings. Budget pockets for the
// savings category are likewise excluded from the budget total, since money
// moved into savings is not spending to be capped.
//
// The result is a pure function of the inputs: identical inputs always yield
// an identical view.
func ComputeMonthlySummary(transactions []models.Transaction, pockets []models.Budget, period Period, cats Categories) models.MonthlySummaryView {
	totals := models.SummaryTotals{
		TotalIncome:               decimal.Zero,
		TotalExpenses:             decimal.Zero,
		Balance:                   decimal.Zero,
		TotalTransferredToSavings: decimal.Zero,
	}
	byCategory := make(map[string]decimal.Decimal)

	for _, t := range transactions {
		if cats.IsReserved(t.Category) {
			if t.Category == cats.Savings && t.Type == models.TransactionTypeExpense {
				// the "money leaving" leg of a savings transfer
				totals.TotalTransferredToSavings = totals.TotalTransferredToSavings.Add(t.Amount)
			}
			continue
		}

		totals.TransactionCount++
		switch t.Type {
		case models.TransactionTypeIncome:
			totals.IncomeCount++
			totals.TotalIncome = totals.TotalIncome.Add(t.Amount)
		case models.TransactionTypeExpense:
			totals.ExpenseCount++
			totals.TotalExpenses = totals.TotalExpenses.Add(t.Amount)
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		}
	}
	totals.Balance = totals.TotalIncome.Sub(totals.TotalExpenses)

	budget := models.BudgetView{
		TotalAmount: decimal.Zero,
		Details:     make([]models.Budget, 0, len(pockets)),
	}
	for _, p := range pockets {
		budget.Details = append(budget.Details, p)
		if p.CategoryName == cats.Savings {
			continue
		}
		budget.TotalAmount = budget.TotalAmount.Add(p.Amount)
	}
	budget.Spent = totals.TotalExpenses
	budget.Remaining = budget.TotalAmount.Sub(totals.TotalExpenses)

	return models.MonthlySummaryView{
		Period:             models.PeriodView{Month: period.Month, Year: period.Year},
		Summary:            totals,
		Budget:             budget,
		ExpensesByCategory: byCategory,
	}
}
