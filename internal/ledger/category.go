// Package ledger contains the balance and analytics computations. Every
// function here is a pure function over record sets fetched (and already
// scoped to the caller) by the service layer: no I/O, no stored state.
package ledger

// Default names of the reserved categories used to tag system-generated
// transactions. Both are excluded from regular income/expense totals.
const (
	DefaultSavingsCategory  = "Tabungan"
	DefaultTransferCategory = "Transfer"
)

// Categories holds the reserved category names in effect. They are injected
// from configuration so the exclusion rules stay visible and testable rather
// than buried as magic strings inside the engines.
type Categories struct {
	Savings  string
	Transfer string
}

// DefaultCategories returns the stock reserved-category names
func DefaultCategories() Categories {
	return Categories{
		Savings:  DefaultSavingsCategory,
		Transfer: DefaultTransferCategory,
	}
}

// IsReserved reports whether name tags a system-generated transaction that
// must not count toward regular totals.
func (c Categories) IsReserved(name string) bool {
	return name == c.Savings || name == c.Transfer
}

// Names returns the reserved names, for use in fetch-boundary filters
func (c Categories) Names() []string {
	return []string{c.Savings, c.Transfer}
}
