package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a users row. Balance and TotalWagered are integer
// centavos (numeric(15,0)).
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone,omitempty"`
	Currency     string    `json:"currency"`
	IsAdmin      bool      `json:"is_admin"`
	VipLevel     int       `json:"vip_level"`
	Balance      int64     `json:"balance"`
	TotalWagered int64     `json:"total_wagered"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
