// Package toss implements payment.Gateway against the Toss Payments REST API.
//
// Checkout itself happens in the Toss payment widget on the client, so
// Prepare only assembles the widget parameters. Confirm and Cancel call
// the API with Basic authentication using the secret key.
package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/payment"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.tosspayments.com/v1"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to Toss Payments.
type Client struct {
	baseURL    string
	authHeader string
	successURL string
	failURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Toss client from cfg.
func NewClient(cfg config.TossConfig, log *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("toss: secret key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.SecretKey+":")),
		successURL: cfg.SuccessURL,
		failURL:    cfg.FailURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("component", "toss_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements payment.Gateway.
func (c *Client) Name() string { return payment.ProviderToss }

// Prepare implements payment.Gateway.
func (c *Client) Prepare(ctx context.Context, req payment.PrepareRequest) (*payment.Handle, error) {
	return &payment.Handle{
		Provider:   payment.ProviderToss,
		OrderID:    req.OrderID,
		OrderName:  req.OrderName,
		Amount:     req.Amount,
		SuccessURL: withOrderID(c.successURL, req.OrderID),
		FailURL:    withOrderID(c.failURL, req.OrderID),
	}, nil
}

type confirmBody struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type cancelBody struct {
	CancelReason string `json:"cancelReason"`
	CancelAmount int64  `json:"cancelAmount,omitempty"`
}

// paymentObject is the subset of the Toss Payment object the engine reads.
type paymentObject struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	TotalAmount int64  `json:"totalAmount"`
	ApprovedAt  string `json:"approvedAt"`
	Receipt     *struct {
		URL string `json:"url"`
	} `json:"receipt"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Confirm implements payment.Gateway.
func (c *Client) Confirm(ctx context.Context, req payment.ConfirmRequest) (*payment.Receipt, error) {
	var obj paymentObject
	err := c.do(ctx, "confirm", http.MethodPost, "/payments/confirm", confirmBody{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	}, &obj)
	if err != nil {
		return nil, err
	}

	receipt := &payment.Receipt{
		PaymentKey: obj.PaymentKey,
		OrderID:    obj.OrderID,
		Amount:     obj.TotalAmount,
		Method:     obj.Method,
		ApprovedAt: time.Now().UTC(),
	}
	if obj.Receipt != nil {
		receipt.ReceiptURL = obj.Receipt.URL
	}
	if t, err := time.Parse(time.RFC3339, obj.ApprovedAt); err == nil {
		receipt.ApprovedAt = t.UTC()
	}

	if err := payment.CheckReceipt(req, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Cancel implements payment.Gateway.
func (c *Client) Cancel(ctx context.Context, req payment.CancelRequest) error {
	path := "/payments/" + url.PathEscape(req.PaymentKey) + "/cancel"
	return c.do(ctx, "cancel", http.MethodPost, path, cancelBody{
		CancelReason: req.Reason,
		CancelAmount: req.Amount,
	}, nil)
}

// do sends a JSON request and decodes a 2xx response into out. Every
// failure is returned as a *payment.GatewayError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body, err := json.Marshal(in)
	if err != nil {
		return payment.NewGatewayError(payment.ProviderToss, op, "", "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return payment.NewGatewayError(payment.ProviderToss, op, "", "build request", err)
	}
	httpReq.Header.Set("Authorization", c.authHeader)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("toss request failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return payment.NewGatewayError(payment.ProviderToss, op, "", "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("toss request completed",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if jsonErr := json.Unmarshal(raw, &e); jsonErr != nil || e.Code == "" {
			e.Code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		log.Warn("toss rejected request",
			slog.String("operation", op),
			slog.String("code", e.Code),
			slog.String("message", e.Message))
		return payment.NewGatewayError(payment.ProviderToss, op, e.Code, e.Message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return payment.NewGatewayError(payment.ProviderToss, op, "", "decode response", err)
	}
	return nil
}

func withOrderID(base, orderID string) string {
	if base == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "orderId=" + url.QueryEscape(orderID)
}

var _ payment.Gateway = (*Client)(nil)
