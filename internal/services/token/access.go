package token

import (
	"fmt"
	"time"

	"eventhub/internal/domain/models"
	libjwt "eventhub/internal/lib/jwt"
	"eventhub/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
)

type AccessIssuer struct {
	codec  Codec
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAccessIssuer(codec Codec, secret []byte, ttl time.Duration) *AccessIssuer {
	return &AccessIssuer{
		codec:  codec,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a short-lived token naming user.ID. The user record is not touched.
func (i *AccessIssuer) Issue(user models.User) (string, error) {
	const op = "token.AccessIssuer.Issue"

	now := i.now()
	claims := AccessClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := i.codec.Sign(claims, i.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.TokensIssued.WithLabelValues(metrics.KindAccess).Inc()

	return token, nil
}

// Parse verifies an access token with expiry enforced.
func (i *AccessIssuer) Parse(tokenString string) (*AccessClaims, error) {
	const op = "token.AccessIssuer.Parse"

	var claims AccessClaims
	if err := i.codec.Verify(tokenString, i.secret, &claims, libjwt.VerifyOptions{}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &claims, nil
}
