package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types supported by the tracker
const (
	AccountTypeBank    = "bank"
	AccountTypeEWallet = "e-wallet"
	AccountTypeCash    = "cash"
	AccountTypeOther   = "other"
)

// Account represents a money source (bank account, e-wallet, cash, ...).
// InitialBalance is the ledger starting point; the current balance is always
// derived from it plus the transactions posted to the account.
type Account struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"user_id,omitempty" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	Type           string          `json:"type" db:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance" db:"initial_balance"`
	CreatedAt      time.Time       `json:"created_at,omitempty" db:"created_at"`
}

// AccountRequest is the create/update payload
type AccountRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=100"`
	Type           string `json:"type" validate:"required,oneof=bank e-wallet cash other"`
	InitialBalance string `json:"initial_balance" validate:"omitempty"`
}

// AccountBalanceView is an account enriched with its computed balance
type AccountBalanceView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
