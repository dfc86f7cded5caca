package clients

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quickshow/internal/entities"
)

// SignatureHeader carries the gateway's notification signature:
// "t=<unix>,v1=<hex of HMAC-SHA256(secret, "<unix>.<body>")>".
const SignatureHeader = "Payment-Signature"

// MetadataBookingKey is the metadata key under which the reservation
// workflow stores the booking id on checkout sessions and payment
// intents. It is the only correlation key the reconciler has.
const MetadataBookingKey = "bookingId"

const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
)

type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type CheckoutSessionCompleted struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentIntentSucceeded struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// VerifyNotificationSignature checks a notification body against the
// shared signing secret. The timestamp keeps old signed payloads from
// being replayed; tolerance <= 0 disables that check.
func VerifyNotificationSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	var ts, signature string
	for _, part := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			ts = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			signature = strings.TrimPrefix(part, "v1=")
		}
	}
	if ts == "" || signature == "" {
		return fmt.Errorf("malformed signature header: %w", entities.ErrBadSignature)
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp: %w", entities.ErrBadSignature)
	}
	if tolerance > 0 {
		age := time.Since(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return fmt.Errorf("signature timestamp outside tolerance: %w", entities.ErrBadSignature)
		}
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", entities.ErrBadSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)

	if !hmac.Equal(mac.Sum(nil), got) {
		return entities.ErrBadSignature
	}

	return nil
}

// SignNotification produces the signature header for a payload. The
// provider does this on its side; it is exported for tests.
func SignNotification(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)

	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
