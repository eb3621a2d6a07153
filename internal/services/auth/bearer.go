package auth

import (
	"errors"
	"fmt"
	"strings"
)

const bearerScheme = "Bearer"

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthScheme = errors.New("authorization scheme must be Bearer")
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
// Both failures wrap ErrUnauthorized.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingAuthHeader)
	}

	scheme, raw, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidAuthScheme)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingAuthHeader)
	}

	return raw, nil
}
