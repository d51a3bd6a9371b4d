package ports

//go:generate mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks

import (
	"context"

	"eseva-portal/internal/core/domain"
)

// PaymentGateway is the outbound boundary to the wallet recharge gateway.
// Any transport, status or decoding failure is reported as GatewayUnavailable.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	QueryOrderStatus(ctx context.Context, orderID string) (*GatewayOrderStatus, error)
}

// GatewayOrderRequest holds everything needed to open a gateway order.
type GatewayOrderRequest struct {
	OrderID     string
	Amount      int64 // Paise
	Note        string
	ProductName string
	Customer    domain.Customer
	RedirectURL string
}

// GatewayOrder is a successfully created gateway order.
type GatewayOrder struct {
	PaymentURL string
}

// Gateway status vocabulary.
const (
	GatewayStatusSuccess = "Success"
	GatewayStatusFailed  = "Failed"
)

// GatewayOrderStatus is the gateway's view of an order.
type GatewayOrderStatus struct {
	Status            string // Success, Failed, or a non-terminal value
	Amount            int64  // Paise
	ExternalReference string
}

// PayURequest is the signed form posted to the hosted checkout.
type PayURequest struct {
	ActionURL   string `json:"action_url"`
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SURL        string `json:"surl"`
	FURL        string `json:"furl"`
	UDF1        string `json:"udf1"`
	UDF2        string `json:"udf2"`
	UDF3        string `json:"udf3"`
	UDF4        string `json:"udf4"`
	UDF5        string `json:"udf5"`
	Hash        string `json:"hash"`
}

// PayUResponse is the form the hosted checkout posts back to the callback.
type PayUResponse struct {
	Status      string
	TxnID       string
	Amount      string
	FirstName   string
	Email       string
	ProductInfo string
	Hash        string
	MihPayID    string // Gateway-side payment reference
}

// PayUSigner computes and checks the position-dependent SHA-512 hashes.
type PayUSigner interface {
	SignRequest(req PayURequest) string
	VerifyResponse(resp PayUResponse) bool
}
