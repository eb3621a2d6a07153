package middleware

import (
	"net/http"

	"eventhub/internal/services/token"
	"eventhub/internal/transport/http/dto/response"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where JWTAuth stores the *token.AccessClaims of the caller.
const ClaimsContextKey = "user"

type AccessParser interface {
	Parse(tokenString string) (*token.AccessClaims, error)
}

// JWTAuth requires a valid, unexpired "Authorization: Bearer" access token.
func JWTAuth(parser AccessParser) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsContextKey,
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return parser.Parse(auth)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusUnauthorized, response.ErrUnauthenticated)
		},
	})
}

// Claims returns the access claims JWTAuth stored on c.
func Claims(c echo.Context) (*token.AccessClaims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*token.AccessClaims)
	return claims, ok && claims != nil
}
