package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Confirmation is the provider's view of a payment reference.
type Confirmation struct {
	Valid  bool
	Amount decimal.Decimal
}

var ErrProviderUnavailable = errors.New("payment provider unavailable")

const statusCaptured = "captured"

// Client confirms payments against a Razorpay style REST API. Amounts are
// reported in minor units.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

type paymentEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
}

// Confirm looks up reference at the provider. An unknown reference is a
// valid answer (Valid=false), not an error.
func (c *Client) Confirm(ctx context.Context, reference string) (Confirmation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+url.PathEscape(reference), nil)
	if err != nil {
		return Confirmation{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Confirmation{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return Confirmation{Valid: false}, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Confirmation{}, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p paymentEntity
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Confirmation{}, fmt.Errorf("decode payment: %w", err)
	}

	return Confirmation{
		Valid:  p.Status == statusCaptured,
		Amount: decimal.New(p.Amount, -2),
	}, nil
}
