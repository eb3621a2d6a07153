package token

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain/models"
	"eventhub/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionStore persists the user's current refresh session id.
type SessionStore interface {
	SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error
	// RotateSessionID replaces current with next only if current is still stored,
	// otherwise it fails with storage.ErrSessionMismatch.
	RotateSessionID(ctx context.Context, userID, current, next uuid.UUID) error
}

type RefreshIssuer struct {
	codec    Codec
	secret   []byte
	ttl      time.Duration
	sessions SessionStore
	now      func() time.Time
	newID    func() (uuid.UUID, error)
}

func NewRefreshIssuer(codec Codec, secret []byte, ttl time.Duration, sessions SessionStore) *RefreshIssuer {
	return &RefreshIssuer{
		codec:    codec,
		secret:   secret,
		ttl:      ttl,
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewRandom,
	}
}

// Issue starts a new session for user, superseding any previous one.
func (i *RefreshIssuer) Issue(ctx context.Context, user *models.User) (string, error) {
	const op = "token.RefreshIssuer.Issue"

	token, err := i.issue(ctx, user, func(next uuid.UUID) error {
		return i.sessions.SetSessionID(ctx, user.ID, uuid.NullUUID{UUID: next, Valid: true})
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Rotate replaces the presented session with a new one. It fails with
// storage.ErrSessionMismatch when presented is no longer the stored session,
// which is how a concurrent refresh with the same token loses.
func (i *RefreshIssuer) Rotate(ctx context.Context, user *models.User, presented uuid.UUID) (string, error) {
	const op = "token.RefreshIssuer.Rotate"

	token, err := i.issue(ctx, user, func(next uuid.UUID) error {
		return i.sessions.RotateSessionID(ctx, user.ID, presented, next)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// issue signs first and persists second; the token is only returned once the
// session id it carries has been stored.
func (i *RefreshIssuer) issue(ctx context.Context, user *models.User, persist func(next uuid.UUID) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	next, err := i.newID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	now := i.now()
	claims := RefreshClaims{
		SessionID: next,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := i.codec.Sign(claims, i.secret)
	if err != nil {
		return "", err
	}

	if err := persist(next); err != nil {
		return "", err
	}

	user.SessionID = uuid.NullUUID{UUID: next, Valid: true}

	metrics.TokensIssued.WithLabelValues(metrics.KindRefresh).Inc()

	return token, nil
}
