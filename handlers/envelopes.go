package handlers

import (
	"time"

	"github.com/tech-arch1tect/storefront/services/cart"
	"github.com/tech-arch1tect/storefront/services/catalog"
	"github.com/tech-arch1tect/storefront/services/users"
	"github.com/tech-arch1tect/storefront/session"
)

// Envelope is embedded in every response body. Payload fields sit next to
// success and message at the top level.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

type CSRFTokenResponse struct {
	Envelope
	Token string `json:"token,omitempty"`
}

type CodeSentResponse struct {
	Envelope
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterResponse struct {
	Envelope
	AccountID uint   `json:"account_id"`
	Redirect  string `json:"redirect"`
}

type LoginResponse struct {
	Envelope
	Redirect string `json:"redirect"`
}

type ProfileResponse struct {
	Envelope
	User *users.User `json:"user"`
}

type SessionsResponse struct {
	Envelope
	Sessions []session.SessionInfo `json:"sessions"`
}

type ProductsResponse struct {
	Envelope
	Products []catalog.Product `json:"products"`
}

type CartResponse struct {
	Envelope
	Items []cart.Item `json:"items"`
	// Total is in cents.
	Total int64 `json:"total"`
}

type CartItemResponse struct {
	Envelope
	Item *cart.Item `json:"item"`
}
