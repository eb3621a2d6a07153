package token

import (
	"errors"
	"fmt"

	libjwt "eventhub/internal/lib/jwt"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidAccessToken  = errors.New("invalid access token")
)

// Result is the outcome of a pair validation. Access and Refresh are set only
// when Valid is true; Reason is set only when it is false.
type Result struct {
	Valid   bool
	Reason  error
	Access  *AccessClaims
	Refresh *RefreshClaims
}

// PairValidator authenticates an (access, refresh) pair presented together.
// It does not check the refresh session against the user record.
type PairValidator struct {
	verifier      Verifier
	appSecret     []byte
	refreshSecret []byte
}

func NewPairValidator(verifier Verifier, appSecret, refreshSecret []byte) *PairValidator {
	return &PairValidator{
		verifier:      verifier,
		appSecret:     appSecret,
		refreshSecret: refreshSecret,
	}
}

func (v *PairValidator) Validate(refreshToken, accessToken string) Result {
	var refresh RefreshClaims
	if err := v.verifier.Verify(refreshToken, v.refreshSecret, &refresh, libjwt.VerifyOptions{}); err != nil {
		return Result{Reason: fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)}
	}

	var access AccessClaims
	if err := v.verifier.Verify(accessToken, v.appSecret, &access, libjwt.VerifyOptions{IgnoreExpiration: true}); err != nil {
		return Result{Reason: fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)}
	}

	return Result{
		Valid:   true,
		Access:  &access,
		Refresh: &refresh,
	}
}
