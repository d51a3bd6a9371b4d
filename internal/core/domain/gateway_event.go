package domain

import (
	"time"

	"github.com/google/uuid"
)

// GatewayEventSource identifies which entry point received a notification.
type GatewayEventSource string

const (
	EventSourceWebhook      GatewayEventSource = "WEBHOOK"
	EventSourceStatusPoll   GatewayEventSource = "STATUS_POLL"
	EventSourcePayUCallback GatewayEventSource = "PAYU_CALLBACK"
)

// GatewayEventOutcome records what the reconciler did with a notification.
type GatewayEventOutcome string

const (
	EventOutcomeSettled   GatewayEventOutcome = "SETTLED"
	EventOutcomeDuplicate GatewayEventOutcome = "DUPLICATE"
	EventOutcomeRejected  GatewayEventOutcome = "REJECTED"
	EventOutcomeNotFound  GatewayEventOutcome = "NOT_FOUND"
	EventOutcomeIgnored   GatewayEventOutcome = "IGNORED"
	EventOutcomeError     GatewayEventOutcome = "ERROR"
)

// GatewayEvent is an append-only trail of inbound gateway notifications,
// kept for manual reconciliation.
type GatewayEvent struct {
	ID               uuid.UUID           `json:"id"`
	Source           GatewayEventSource  `json:"source"`
	OrderID          string              `json:"order_id"`
	GatewayStatus    string              `json:"gateway_status"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	Payload          string              `json:"payload"` // JSON string
	Outcome          GatewayEventOutcome `json:"outcome"`
	CreatedAt        time.Time           `json:"created_at"`
}
