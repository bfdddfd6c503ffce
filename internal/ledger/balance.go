package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dompetku/backend/internal/models"
)

// ComputeBalance derives an account's current balance from its initial
// balance and the transactions posted to it.
//
// Only rows whose AccountID matches the account move the balance: income
// adds, expense subtracts. Rows that reference the account solely through
// DestinationAccountID are the counterpart legs of transfer-pairs; the
// movement they describe is already carried by the offsetting row posted to
// this account, so they must not alter the sum. Summation is commutative,
// so the result is independent of transaction order.
func ComputeBalance(account models.Account, transactions []models.Transaction) decimal.Decimal {
	balance := account.InitialBalance
	for _, t := range transactions {
		if t.AccountID != account.ID {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			balance = balance.Add(t.Amount)
		case models.TransactionTypeExpense:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// ComputeAllBalances runs ComputeBalance for every account over one shared
// transaction fetch. Transactions referencing accounts absent from the input
// (deleted mid-read) simply match nothing and are skipped.
func ComputeAllBalances(accounts []models.Account, transactions []models.Transaction) []models.AccountBalanceView {
	views := make([]models.AccountBalanceView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, models.AccountBalanceView{
			ID:             acc.ID,
			Name:           acc.Name,
			Type:           acc.Type,
			InitialBalance: acc.InitialBalance,
			CurrentBalance: ComputeBalance(acc, transactions),
		})
	}
	return views
}
