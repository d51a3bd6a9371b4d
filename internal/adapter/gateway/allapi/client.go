// Package allapi is the outbound adapter for the AllAPI wallet recharge gateway.
package allapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eseva-portal/config"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	createPath = "/order/create"
	statusPath = "/order/status"

	maxResponseBytes = 1 << 20
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentGateway.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	log        zerolog.Logger
}

var _ ports.PaymentGateway = (*Client)(nil)

// NewClient creates a gateway client with its own timeout-bound http.Client.
func NewClient(cfg config.GatewayConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout}, log)
}

// NewClientWithHTTP creates a gateway client on top of a caller-supplied HTTPClient.
func NewClientWithHTTP(cfg config.GatewayConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		log:        logger.Component(log, "allapi"),
	}
}

type createOrderRequest struct {
	Token          string `json:"token"`
	OrderID        string `json:"order_id"`
	TxnAmount      string `json:"txn_amount"`
	TxnNote        string `json:"txn_note"`
	ProductName    string `json:"product_name"`
	CustomerName   string `json:"customer_name"`
	CustomerMobile string `json:"customer_mobile"`
	CustomerEmail  string `json:"customer_email"`
	RedirectURL    string `json:"redirect_url"`
}

type createOrderResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Results struct {
		PaymentURL string `json:"payment_url"`
	} `json:"results"`
}

type orderStatusRequest struct {
	Token   string `json:"token"`
	OrderID string `json:"order_id"`
}

type orderStatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Results struct {
		Status    string          `json:"status"`
		TxnAmount decimal.Decimal `json:"txn_amount"`
		TxnID     string          `json:"txn_id"`
	} `json:"results"`
}

// CreateOrder opens a gateway order and returns its hosted payment URL.
func (c *Client) CreateOrder(ctx context.Context, req ports.GatewayOrderRequest) (*ports.GatewayOrder, error) {
	body := createOrderRequest{
		Token:          c.token,
		OrderID:        req.OrderID,
		TxnAmount:      domain.FormatRupees(req.Amount),
		TxnNote:        req.Note,
		ProductName:    req.ProductName,
		CustomerName:   req.Customer.Name,
		CustomerMobile: req.Customer.Phone,
		CustomerEmail:  req.Customer.Email,
		RedirectURL:    req.RedirectURL,
	}

	var out createOrderResponse
	if err := c.post(ctx, createPath, body, &out); err != nil {
		return nil, c.unavailable("create order", req.OrderID, err)
	}
	if !out.Status {
		return nil, c.unavailable("create order", req.OrderID, fmt.Errorf("gateway rejected order: %s", out.Message))
	}
	if out.Results.PaymentURL == "" {
		return nil, c.unavailable("create order", req.OrderID, errors.New("missing payment_url"))
	}

	c.log.Info().Str("order_id", req.OrderID).Int64("amount", req.Amount).Msg("Gateway order created")
	return &ports.GatewayOrder{PaymentURL: out.Results.PaymentURL}, nil
}

// QueryOrderStatus asks the gateway for the current state of an order.
func (c *Client) QueryOrderStatus(ctx context.Context, orderID string) (*ports.GatewayOrderStatus, error) {
	var out orderStatusResponse
	if err := c.post(ctx, statusPath, orderStatusRequest{Token: c.token, OrderID: orderID}, &out); err != nil {
		return nil, c.unavailable("order status", orderID, err)
	}
	if !out.Status {
		return nil, c.unavailable("order status", orderID, fmt.Errorf("gateway status error: %s", out.Message))
	}

	amount, err := domain.RupeesToPaise(out.Results.TxnAmount)
	if err != nil {
		return nil, c.unavailable("order status", orderID, fmt.Errorf("txn_amount: %w", err))
	}

	return &ports.GatewayOrderStatus{
		Status:            out.Results.Status,
		Amount:            amount,
		ExternalReference: out.Results.TxnID,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) unavailable(op, orderID string, err error) error {
	c.log.Warn().Err(err).Str("op", op).Str("order_id", orderID).Msg("Gateway call failed")
	return apperror.ErrGatewayUnavailable(err)
}
