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

// PriceLineItem is one order line sent to the pricing service.
type PriceLineItem struct {
	JewelryItemID string          `json:"jewelry_item_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// OrderTotals is the computed money breakdown for an order.
type OrderTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	MakingCharges decimal.Decimal `json:"making_charges"`
	WastageAmount decimal.Decimal `json:"wastage_amount"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// PricingClient computes order totals through the external pricing service.
type PricingClient interface {
	CalculateOrderTotal(ctx context.Context, items []PriceLineItem) (OrderTotals, error)
}

type httpPricingClient struct {
	baseURL string
	client  *http.Client
}

func NewPricingClient(baseURL string, timeout time.Duration) PricingClient {
	return &httpPricingClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpPricingClient) CalculateOrderTotal(ctx context.Context, items []PriceLineItem) (OrderTotals, error) {
	body, err := json.Marshal(map[string]interface{}{"items": items})
	if err != nil {
		return OrderTotals{}, apperr.Dependency("pricing", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pricing/calculate", bytes.NewReader(body))
	if err != nil {
		return OrderTotals{}, apperr.Dependency("pricing", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return OrderTotals{}, apperr.Dependency("pricing", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OrderTotals{}, apperr.Dependency("pricing", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var totals OrderTotals
	if err := json.NewDecoder(resp.Body).Decode(&totals); err != nil {
		return OrderTotals{}, apperr.Dependency("pricing", err)
	}
	return totals, nil
}
