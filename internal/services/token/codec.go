package token

import (
	libjwt "eventhub/internal/lib/jwt"

	"github.com/golang-jwt/jwt/v5"
)

type Signer interface {
	Sign(claims jwt.Claims, secret []byte) (string, error)
}

type Verifier interface {
	Verify(tokenString string, secret []byte, claims jwt.Claims, opts libjwt.VerifyOptions) error
}

type Codec interface {
	Signer
	Verifier
}
