package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer carries the payer details forwarded to a payment gateway.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DefaultCustomerPhone is sent when the account has no phone on record.
const DefaultCustomerPhone = "9999999999"

// StagedUpload correlates an unpaid document submission with its temporary
// files. It lives until the payment callback consumes it or its retention
// window elapses.
type StagedUpload struct {
	OrderID     string            `json:"order_id"`
	AccountID   uuid.UUID         `json:"account_id"`
	ServiceType ServiceType       `json:"service_type"`
	Amount      int64             `json:"amount"` // Paise
	Fields      map[string]string `json:"fields"`
	Files       map[string]string `json:"files"` // Form field -> temp path
	Customer    Customer          `json:"customer"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// IsExpired returns true once the retention deadline has passed.
func (s *StagedUpload) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
