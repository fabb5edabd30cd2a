// Package hotel posts restaurant charges onto hotel stays.
package hotel

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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrStayNotActive is returned when the stay does not exist or is checked out
var ErrStayNotActive = errors.New("hotel: stay is not active")

// Charge is one restaurant bill transferred to a room
type Charge struct {
	StayID      uuid.UUID       `json:"stay_id"`
	Amount      decimal.Decimal `json:"amount"`
	OrderNumber string          `json:"order_number"`
}

// Client posts charges to the front-desk system
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a hotel client. token is sent as a bearer token when set.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// PostRestaurantCharge adds the charge to the stay's restaurant and total charges.
// It is not idempotent on the remote side.
func (c *Client) PostRestaurantCharge(ctx context.Context, charge Charge) error {
	if !charge.Amount.IsPositive() {
		return fmt.Errorf("hotel: charge amount must be positive")
	}

	payload, err := json.Marshal(charge)
	if err != nil {
		return fmt.Errorf("hotel: failed to encode charge: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/restaurant-charges", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hotel: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hotel: failed to reach front desk: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrStayNotActive, charge.StayID)
	}

	var reply struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &reply) == nil && reply.Error != "" {
		return fmt.Errorf("hotel: %s", reply.Error)
	}
	return fmt.Errorf("hotel: charge rejected with status %d", resp.StatusCode)
}
