package users

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the upstream identity provider's user row plus the
// remittance-specific fields this service maintains.
type Profile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	Phone      string    `json:"phone" db:"phone"`
	Country    string    `json:"country" db:"country"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
