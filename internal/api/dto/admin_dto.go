package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	APIKey string `json:"api_key"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// WebhookRequest payload. An empty URL selects the configured public address.
type WebhookRequest struct {
	URL string `json:"url"`
}

// WebhookResponse reports the registered address.
type WebhookResponse struct {
	URL string `json:"url"`
}
