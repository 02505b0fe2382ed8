package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Gateway creates hosted payment sessions with the external payment provider.
// Amounts are in the smallest currency unit (paisa for INR).
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

// Signature computes the callback signature: HMAC-SHA256 over
// "gatewayOrderID|gatewayPaymentID", hex encoded.
func Signature(gatewayOrderID, gatewayPaymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected signature and compares it against the
// provided one in constant time. The match is byte-exact.
func VerifySignature(gatewayOrderID, gatewayPaymentID, provided string, secret []byte) bool {
	expected := Signature(gatewayOrderID, gatewayPaymentID, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// RazorpayGateway talks to the hosted Razorpay orders API.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   "https://api.razorpay.com",
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder registers a hosted payment session and returns the gateway's
// order identifier.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(gatewayOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var body gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if body.ID == "" {
		return "", fmt.Errorf("gateway response missing order id")
	}

	return body.ID, nil
}
