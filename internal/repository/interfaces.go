package repository

import (
	"context"
	"time"

	"eventhub/internal/domain/models"

	"github.com/google/uuid"
)

// UserRepository is the user-record store consumed by the auth core. Lookups
// return the full record, including the password hash and session id.
type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error
	RotateSessionID(ctx context.Context, userID, current, next uuid.UUID) error
}

// AttemptRepository counts events in fixed windows keyed by an arbitrary string.
type AttemptRepository interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
}
