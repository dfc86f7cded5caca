package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"quickshow/internal/entities"
)

// PaymentsClient talks to the payment provider's REST API: it creates
// hosted checkout sessions and looks sessions up by payment intent when
// a settlement notification arrives without session metadata.
type PaymentsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewPaymentsClient(baseURL, apiKey string) *PaymentsClient {
	return &PaymentsClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type lineItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int    `json:"quantity"`
}

type paymentIntentData struct {
	Metadata map[string]string `json:"metadata"`
}

type createCheckoutSessionBody struct {
	Mode              string            `json:"mode"`
	LineItems         []lineItem        `json:"line_items"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	ExpiresAt         int64             `json:"expires_at"`
	Metadata          map[string]string `json:"metadata"`
	PaymentIntentData paymentIntentData `json:"payment_intent_data"`
}

func (c *PaymentsClient) CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error) {
	body, err := json.Marshal(createCheckoutSessionBody{
		Mode: "payment",
		LineItems: []lineItem{{
			Name:        req.ItemName,
			Description: req.ItemDescription,
			UnitAmount:  req.UnitAmount,
			Quantity:    req.Quantity,
		}},
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		ExpiresAt:         req.ExpiresAt.Unix(),
		Metadata:          req.Metadata,
		PaymentIntentData: paymentIntentData{Metadata: req.PaymentIntentMetadata},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error creating checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("error creating checkout session: unexpected status code %v", resp.StatusCode)
	}

	var session entities.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	return &session, nil
}

func (c *PaymentsClient) SessionsByPaymentIntent(ctx context.Context, paymentIntentID string) ([]entities.CheckoutSession, error) {
	reqURL := c.baseURL + "/v1/checkout/sessions?payment_intent=" + url.QueryEscape(paymentIntentID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error listing checkout sessions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error listing checkout sessions: unexpected status code %v", resp.StatusCode)
	}

	var sessions struct {
		Data []entities.CheckoutSession `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("failed to decode checkout sessions: %w", err)
	}

	return sessions.Data, nil
}
