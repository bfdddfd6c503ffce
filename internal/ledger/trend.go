package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dompetku/backend/internal/models"
)

// DefaultTrendWindow is the number of trailing months shown by default
const DefaultTrendWindow = 6

// ComputeTrends buckets transactions by calendar month and returns the
// trailing window ending at the reference period, oldest month first.
//
// The output always has exactly windowMonths points: months with no activity
// are synthesized with zero income, zero expense, and an empty category map.
// Reserved categories are expected to be excluded at the fetch boundary, but
// the same exclusion is applied here as well so the trend series can never
// disagree with the monthly summary.
func ComputeTrends(transactions []models.Transaction, windowMonths int, reference Period, cats Categories) []models.TrendPoint {
	if windowMonths < 1 {
		windowMonths = 1
	}

	points := make([]models.TrendPoint, windowMonths)
	index := make(map[Period]*models.TrendPoint, windowMonths)
	for i := 0; i < windowMonths; i++ {
		p := reference.AddMonths(i - windowMonths + 1)
		points[i] = models.TrendPoint{
			Label:      p.Label(),
			Year:       p.Year,
			Month:      p.Month,
			Income:     decimal.Zero,
			Expense:    decimal.Zero,
			Categories: make(map[string]decimal.Decimal),
		}
		index[p] = &points[i]
	}

	for _, t := range transactions {
		if cats.IsReserved(t.Category) {
			continue
		}
		bucket, ok := index[PeriodOf(t.Date)]
		if !ok {
			// outside the window
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(t.Amount)
			bucket.Categories[t.Category] = bucket.Categories[t.Category].Add(t.Amount)
		}
	}

	return points
}
