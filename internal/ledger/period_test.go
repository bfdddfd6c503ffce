package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPeriod(t *testing.T) {
	tests := []struct {
		name    string
		month   int
		year    int
		wantErr bool
	}{
		{"valid", 3, 2025, false},
		{"january", 1, 2000, false},
		{"december", 12, 2100, false},
		{"month zero", 0, 2025, true},
		{"month thirteen", 13, 2025, true},
		{"year too small", 6, 1999, true},
		{"year too large", 6, 2101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPeriod(tt.month, tt.year)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	p := Period{Month: 2, Year: 2024} // leap February

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, 29, p.End().Day())
	assert.True(t, p.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodAddMonths(t *testing.T) {
	p := Period{Month: 1, Year: 2025}

	assert.Equal(t, Period{Month: 12, Year: 2024}, p.AddMonths(-1))
	assert.Equal(t, Period{Month: 8, Year: 2024}, p.AddMonths(-5))
	assert.Equal(t, Period{Month: 1, Year: 2026}, p.AddMonths(12))
}

func TestCategoriesIsReserved(t *testing.T) {
	cats := DefaultCategories()

	assert.True(t, cats.IsReserved("Tabungan"))
	assert.True(t, cats.IsReserved("Transfer"))
	assert.False(t, cats.IsReserved("Food & Dining"))
	assert.False(t, cats.IsReserved("tabungan")) // equality check is exact

	custom := Categories{Savings: "Savings", Transfer: "Move"}
	assert.True(t, custom.IsReserved("Savings"))
	assert.False(t, custom.IsReserved("Tabungan"))
	assert.ElementsMatch(t, []string{"Savings", "Move"}, custom.Names())
}
