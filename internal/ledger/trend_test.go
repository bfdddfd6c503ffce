package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dompetku/backend/internal/models"
)

func TestComputeTrendsWindowCompleteness(t *testing.T) {
	reference := Period{Month: 3, Year: 2025}
	cats := DefaultCategories()

	t.Run("empty input still yields full window", func(t *testing.T) {
		points := ComputeTrends(nil, 6, reference, cats)

		require.Len(t, points, 6)
		for _, p := range points {
			assert.True(t, p.Income.IsZero())
			assert.True(t, p.Expense.IsZero())
			assert.Empty(t, p.Categories)
		}
	})

	t.Run("chronological ascending ending at reference", func(t *testing.T) {
		points := ComputeTrends(nil, 6, reference, cats)

		assert.Equal(t, "Oct 2024", points[0].Label)
		assert.Equal(t, 10, points[0].Month)
		assert.Equal(t, 2024, points[0].Year)
		assert.Equal(t, "Mar 2025", points[5].Label)
		for i := 1; i < len(points); i++ {
			prev := Period{Month: points[i-1].Month, Year: points[i-1].Year}
			assert.Equal(t, prev.AddMonths(1), Period{Month: points[i].Month, Year: points[i].Year})
		}
	})

	t.Run("window of one", func(t *testing.T) {
		points := ComputeTrends(nil, 1, reference, cats)
		require.Len(t, points, 1)
		assert.Equal(t, "Mar 2025", points[0].Label)
	})
}

func TestComputeTrendsBucketing(t *testing.T) {
	reference := Period{Month: 3, Year: 2025}
	cats := DefaultCategories()

	mk := func(y int, m time.Month, txType, category, amount string) models.Transaction {
		return models.Transaction{
			Type:     txType,
			Category: category,
			Amount:   dec(amount),
			Date:     time.Date(y, m, 18, 12, 0, 0, 0, time.UTC),
		}
	}

	txs := []models.Transaction{
		mk(2025, time.January, models.TransactionTypeIncome, "Salary", "8000000"),
		mk(2025, time.January, models.TransactionTypeExpense, "Food & Dining", "400000"),
		mk(2025, time.March, models.TransactionTypeExpense, "Food & Dining", "250000"),
		mk(2025, time.March, models.TransactionTypeExpense, "Shopping", "100000"),
		// reserved categories never reach the series
		mk(2025, time.March, models.TransactionTypeExpense, cats.Savings, "500000"),
		mk(2025, time.March, models.TransactionTypeExpense, cats.Transfer, "300000"),
		// outside the window
		mk(2024, time.June, models.TransactionTypeExpense, "Food & Dining", "999999"),
	}

	points := ComputeTrends(txs, 6, reference, cats)
	require.Len(t, points, 6)

	jan := points[3]
	assert.Equal(t, "Jan 2025", jan.Label)
	assert.True(t, jan.Income.Equal(dec("8000000")))
	assert.True(t, jan.Expense.Equal(dec("400000")))
	assert.True(t, jan.Categories["Food & Dining"].Equal(dec("400000")))

	feb := points[4]
	assert.True(t, feb.Income.IsZero())
	assert.True(t, feb.Expense.IsZero())
	assert.Empty(t, feb.Categories)

	mar := points[5]
	assert.True(t, mar.Expense.Equal(dec("350000")), "got %s", mar.Expense)
	assert.True(t, mar.Categories["Food & Dining"].Equal(dec("250000")))
	assert.True(t, mar.Categories["Shopping"].Equal(dec("100000")))
}

func TestComputeTrendsYearBoundary(t *testing.T) {
	points := ComputeTrends(nil, 3, Period{Month: 1, Year: 2025}, DefaultCategories())

	require.Len(t, points, 3)
	assert.Equal(t, "Nov 2024", points[0].Label)
	assert.Equal(t, "Dec 2024", points[1].Label)
	assert.Equal(t, "Jan 2025", points[2].Label)
}
