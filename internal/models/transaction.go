package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction direction is carried by Type; Amount is always stored positive.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is one row of the user's ledger. A transfer between two
// accounts is stored as two linked rows sharing the transfer category: an
// expense row posted to the source account and an income row posted to the
// destination account, each pointing at the other via DestinationAccountID.
type Transaction struct {
	ID                   string          `json:"id" db:"id"`
	UserID               string          `json:"user_id,omitempty" db:"user_id"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Type                 string          `json:"type" db:"type"`
	Category             string          `json:"category" db:"category"`
	Description          string          `json:"description" db:"description"`
	Date                 time.Time       `json:"date" db:"date"`
	AccountID            string          `json:"account_id" db:"account_id"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty" db:"destination_account_id"`
	ReceiptURL           *string         `json:"receipt_url,omitempty" db:"receipt_url"`
	CreatedAt            time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// TransactionRequest is the create payload
type TransactionRequest struct {
	Amount      string  `json:"amount" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Category    string  `json:"category" validate:"required,min=1,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Date        string  `json:"date" validate:"omitempty"`
	AccountID   string  `json:"account_id" validate:"required,uuid"`
	ReceiptURL  *string `json:"receipt_url" validate:"omitempty,url"`
}

// TransactionUpdateRequest is the update payload; all fields optional
type TransactionUpdateRequest struct {
	Amount      *string `json:"amount"`
	Type        *string `json:"type" validate:"omitempty,oneof=income expense"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Date        *string `json:"date"`
	AccountID   *string `json:"account_id" validate:"omitempty,uuid"`
}

// TransferRequest creates a linked transfer-pair between two accounts
type TransferRequest struct {
	Amount        string `json:"amount" validate:"required"`
	FromAccountID string `json:"from_account_id" validate:"required,uuid"`
	ToAccountID   string `json:"to_account_id" validate:"required,uuid,nefield=FromAccountID"`
	Description   string `json:"description" validate:"max=500"`
	Date          string `json:"date" validate:"omitempty"`
}

// Pagination describes one page of a list response
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TransactionList is the paginated list response payload
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}
