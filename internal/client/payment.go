package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jewelry-backend/internal/apperr"

	"github.com/shopspring/decimal"
)

// RefundResult carries the payment provider's refund reference.
type RefundResult struct {
	RefundReference string `json:"refund_reference"`
}

// PaymentClient executes refunds through the external payment service.
type PaymentClient interface {
	Refund(ctx context.Context, orderID string, amount decimal.Decimal, method, reason string) (RefundResult, error)
}

type httpPaymentClient struct {
	baseURL string
	client  *http.Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) PaymentClient {
	return &httpPaymentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpPaymentClient) Refund(ctx context.Context, orderID string, amount decimal.Decimal, method, reason string) (RefundResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"order_id": orderID,
		"amount":   amount,
		"method":   method,
		"reason":   reason,
	})
	if err != nil {
		return RefundResult{}, apperr.Dependency("payment", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/refund", bytes.NewReader(body))
	if err != nil {
		return RefundResult{}, apperr.Dependency("payment", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return RefundResult{}, apperr.Dependency("payment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RefundResult{}, apperr.Dependency("payment", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result RefundResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return RefundResult{}, apperr.Dependency("payment", err)
	}
	return result, nil
}
