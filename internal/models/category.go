package models

import "time"

// Category is a transaction label. Rows with a nil UserID are the shared
// defaults; rows with a UserID are that user's custom categories.
type Category struct {
	ID        string    `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	Icon      *string   `json:"icon,omitempty" db:"icon"`
	Color     *string   `json:"color,omitempty" db:"color"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// CategoryRequest is the create/update payload
type CategoryRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=100"`
	Type  string  `json:"type" validate:"required,oneof=income expense"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}
