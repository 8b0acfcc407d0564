// Package auth verifies the platform-issued identity tokens that carry the
// authenticated user ID.
package auth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Validator verifies HS256 tokens signed with the identity provider's
// shared secret and extracts the subject user ID.
type Validator struct {
	secret []byte
}

// NewValidator builds a Validator for the given signing secret.
func NewValidator(secret string) (*Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Validator{secret: []byte(secret)}, nil
}

// UserID validates tokenString (signature and expiry) and returns its
// subject claim, the user ID.
func (v *Validator) UserID(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if token.Subject() == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return token.Subject(), nil
}
