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

// ChannelGateway delivers a rendered message to a customer over one channel.
// The dispatcher calls it once per channel and records each outcome
// independently.
type ChannelGateway interface {
	Deliver(ctx context.Context, customerID, channel, recipient, message string) error
}

type httpChannelGateway struct {
	baseURL string
	client  *http.Client
}

func NewChannelGateway(baseURL string, timeout time.Duration) ChannelGateway {
	return &httpChannelGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *httpChannelGateway) Deliver(ctx context.Context, customerID, channel, recipient, message string) error {
	body, err := json.Marshal(map[string]interface{}{
		"customer_id": customerID,
		"channel":     channel,
		"recipient":   recipient,
		"message":     message,
	})
	if err != nil {
		return apperr.Dependency("notification gateway", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/notifications/deliver", bytes.NewReader(body))
	if err != nil {
		return apperr.Dependency("notification gateway", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return apperr.Dependency("notification gateway", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.Dependency("notification gateway", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
