package domain

import (
	"time"

	"github.com/google/uuid"
)

// Direction is the sign of a money movement relative to the account.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// LedgerCategory classifies why money moved.
type LedgerCategory string

const (
	CategoryRecharge        LedgerCategory = "RECHARGE"
	CategoryServicePayment  LedgerCategory = "SERVICE_PAYMENT"
	CategoryRefund          LedgerCategory = "REFUND"
	CategoryAdminAdjustment LedgerCategory = "ADMIN_ADJUSTMENT"
)

// LedgerStatus represents the lifecycle state of a ledger entry.
type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "PENDING"
	LedgerStatusSuccess LedgerStatus = "SUCCESS"
	LedgerStatusFailed  LedgerStatus = "FAILED"
)

// ManualApprovalReference is recorded as the payment reference when an
// admin settles a pending recharge by hand.
const ManualApprovalReference = "MANUAL_APPROVAL"

// LedgerEntry represents one money movement. Entries are never deleted.
type LedgerEntry struct {
	ID               uuid.UUID      `json:"id"`
	AccountID        uuid.UUID      `json:"account_id"`
	Direction        Direction      `json:"direction"`
	Amount           int64          `json:"amount"` // Paise, always positive
	Category         LedgerCategory `json:"category"`
	Description      string         `json:"description"`
	OrderID          *string        `json:"order_id,omitempty"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	Status           LedgerStatus   `json:"status"`
	ServiceID        *uuid.UUID     `json:"service_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsTerminal returns true if the entry can no longer be settled.
func (e *LedgerEntry) IsTerminal() bool {
	return e.Status == LedgerStatusSuccess || e.Status == LedgerStatusFailed
}

// SignedAmount returns the amount with the sign implied by Direction.
func (e *LedgerEntry) SignedAmount() int64 {
	if e.Direction == DirectionDebit {
		return -e.Amount
	}
	return e.Amount
}

// LedgerTotals is the SUCCESS-only sum of an account's entries, used to
// check the stored balance against the ledger.
type LedgerTotals struct {
	AccountID     uuid.UUID `json:"account_id"`
	Credits       int64     `json:"credits"`
	Debits        int64     `json:"debits"`
	StoredBalance int64     `json:"stored_balance"`
}

// Expected returns credits minus debits.
func (t LedgerTotals) Expected() int64 {
	return t.Credits - t.Debits
}

// Drift returns the difference between the stored balance and the ledger.
func (t LedgerTotals) Drift() int64 {
	return t.StoredBalance - t.Expected()
}
