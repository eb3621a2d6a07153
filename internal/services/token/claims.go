package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims identify the user an access token was issued to.
type AccessClaims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the session id. The owning user comes from the
// access token presented alongside.
type RefreshClaims struct {
	SessionID uuid.UUID `json:"sessionId"`
	jwt.RegisteredClaims
}
