package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrEmptySecret  = errors.New("empty signing secret")
)

type VerifyOptions struct {
	// IgnoreExpiration skips claims validation; signature, algorithm and
	// structure are still checked.
	IgnoreExpiration bool
}

// Codec signs and verifies HS256 tokens. The secret is supplied per call so the
// same codec serves both the access and the refresh secret.
type Codec struct {
	method jwt.SigningMethod
}

func NewCodec() *Codec {
	return &Codec{method: jwt.SigningMethodHS256}
}

func (c *Codec) Sign(claims jwt.Claims, secret []byte) (string, error) {
	const op = "jwt.Codec.Sign"

	if len(secret) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Verify checks tokenString against secret and decodes it into claims.
// Every failure wraps ErrInvalidToken; expired tokens also wrap ErrTokenExpired.
func (c *Codec) Verify(tokenString string, secret []byte, claims jwt.Claims, opts VerifyOptions) error {
	const op = "jwt.Codec.Verify"

	if len(secret) == 0 {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, ErrEmptySecret)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
	}
	if opts.IgnoreExpiration {
		parserOpts = append(parserOpts, jwt.WithoutClaimsValidation())
	} else {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
	}

	token, err := jwt.NewParser(parserOpts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, ErrTokenExpired)
		}

		return fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if !token.Valid {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return nil
}
