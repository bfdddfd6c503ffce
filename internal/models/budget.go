package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending cap ("pocket") for one category in one month.
// Unique per (user, month, year, category). A zero-amount pocket is never
// stored: setting a budget to zero deletes the row instead.
type Budget struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id,omitempty" db:"user_id"`
	CategoryName string          `json:"category_name" db:"category_name"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Month        int             `json:"month" db:"month"`
	Year         int             `json:"year" db:"year"`
	CreatedAt    time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// BudgetRequest is the create-or-update payload
type BudgetRequest struct {
	Amount       string `json:"amount" validate:"required"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
	Year         int    `json:"year" validate:"required,min=2000,max=2100"`
	CategoryName string `json:"category_name" validate:"required,min=1,max=100"`
}
