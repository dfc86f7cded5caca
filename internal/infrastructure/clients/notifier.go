package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotificationsClient sends the booking confirmation message through
// the notifications collaborator.
type NotificationsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewNotificationsClient(baseURL, apiKey string) *NotificationsClient {
	return &NotificationsClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type BookingConfirmationMessage struct {
	// DeduplicationID lets the collaborator drop a redelivered
	// confirmation for the same booking.
	DeduplicationID string   `json:"deduplication_id"`
	Email           string   `json:"email"`
	MovieTitle      string   `json:"movie_title"`
	ShowDate        string   `json:"show_date"`
	ShowTime        string   `json:"show_time"`
	Seats           []string `json:"seats"`
	Amount          float64  `json:"amount"`
}

func (c *NotificationsClient) SendBookingConfirmation(ctx context.Context, msg BookingConfirmationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages/booking-confirmation", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("error sending confirmation: unexpected status code %v", resp.StatusCode)
	}

	return nil
}
