package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole distinguishes retailers from administrators.
type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

// AccountStatus represents the state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account represents a retailer (or admin) with a prepaid wallet.
// Balance is held in paise and is only changed through ledger operations.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone,omitempty"`
	PasswordHash string        `json:"-"` // Never expose
	Role         AccountRole   `json:"role"`
	Status       AccountStatus `json:"status"`
	District     string        `json:"district,omitempty"`
	Block        string        `json:"block,omitempty"`
	Balance      int64         `json:"balance"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive returns true if the account may log in and transact.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsAdmin returns true for administrator accounts.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
