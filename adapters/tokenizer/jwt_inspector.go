package tokenizer

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

// JWTInspector implements the TokenInspector interface for JWT access tokens
type JWTInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector creates a new JWT inspector
func NewJWTInspector() ports.TokenInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

// Inspect decodes the token claims without checking the signature. The
// venue signs these tokens with a key this service never holds.
func (j *JWTInspector) Inspect(tokenStr string) (core.TokenInfo, error) {
	claims := &VenueClaims{}
	if _, _, err := j.parser.ParseUnverified(tokenStr, claims); err != nil {
		return core.TokenInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	info := core.TokenInfo{Subject: claims.Subject}
	if info.Subject == "" {
		info.Subject = claims.Address
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}
