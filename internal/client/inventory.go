package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jewelry-backend/internal/apperr"
)

// InventoryClient adjusts stock in the external inventory service.
// Positive delta restocks, negative debits.
type InventoryClient interface {
	AdjustStock(ctx context.Context, itemID string, quantityDelta int) error
}

type httpInventoryClient struct {
	baseURL string
	client  *http.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) InventoryClient {
	return &httpInventoryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpInventoryClient) AdjustStock(ctx context.Context, itemID string, quantityDelta int) error {
	body, err := json.Marshal(map[string]interface{}{
		"item_id":        itemID,
		"quantity_delta": quantityDelta,
	})
	if err != nil {
		return apperr.Dependency("inventory", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inventory/adjust", bytes.NewReader(body))
	if err != nil {
		return apperr.Dependency("inventory", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Dependency("inventory", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.Dependency("inventory", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
