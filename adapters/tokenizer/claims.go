package tokenizer

import "github.com/golang-jwt/jwt/v5"

// VenueClaims are the claims read from a venue access token. Only the
// registered ones are relied on.
type VenueClaims struct {
	jwt.RegisteredClaims
	Address string `json:"address,omitempty"`
}
