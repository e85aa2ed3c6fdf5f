package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	SignatureHeader = "X-Payment-Signature"

	EventPaymentCaptured = "payment.captured"
)

var ErrBadSignature = errors.New("bad webhook signature")

// VerifySignature checks the hex HMAC-SHA256 of body under secret.
func VerifySignature(secret []byte, body []byte, signature string) error {
	if len(secret) == 0 || signature == "" {
		return ErrBadSignature
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}
	if !hmac.Equal(got, Sign(secret, body)) {
		return ErrBadSignature
	}
	return nil
}

func Sign(secret []byte, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string            `json:"id"`
				Amount int64             `json:"amount"`
				Status string            `json:"status"`
				Notes  map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Capture is what the order service needs from a webhook delivery. The
// amount in the payload is not trusted; verification asks the provider again.
type Capture struct {
	OrderID   uuid.UUID
	Reference string
}

// ParseWebhook decodes a delivery. ok is false for events other than a
// captured payment.
func ParseWebhook(body []byte) (c Capture, ok bool, err error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return Capture{}, false, fmt.Errorf("decode webhook: %w", err)
	}
	if ev.Event != EventPaymentCaptured {
		return Capture{}, false, nil
	}

	entity := ev.Payload.Payment.Entity
	if entity.ID == "" {
		return Capture{}, false, errors.New("webhook payment id is empty")
	}
	orderID, err := uuid.Parse(entity.Notes["order_id"])
	if err != nil {
		return Capture{}, false, fmt.Errorf("webhook order id: %w", err)
	}
	return Capture{OrderID: orderID, Reference: entity.ID}, true, nil
}
