package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsGoal tracks money set aside toward a target. CurrentAmount only
// moves through the dedicated fund-transfer operation, which also records a
// reserved-category expense transaction so regular totals stay untouched.
type SavingsGoal struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id,omitempty" db:"user_id"`
	Name          string          `json:"name" db:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount" db:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount" db:"current_amount"`
	TargetDate    *time.Time      `json:"target_date,omitempty" db:"target_date"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
}

// SavingsGoalRequest is the create payload
type SavingsGoalRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	TargetAmount string `json:"target_amount" validate:"required"`
	TargetDate   string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// AddFundsRequest moves money from an account into a savings goal
type AddFundsRequest struct {
	GoalID    string `json:"goal_id" validate:"required,uuid"`
	AccountID string `json:"account_id" validate:"required,uuid"`
	Amount    string `json:"amount" validate:"required"`
	Date      string `json:"date" validate:"omitempty"`
}
