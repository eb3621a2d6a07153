package token

import (
	"context"

	libjwt "eventhub/internal/lib/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) RotateSessionID(ctx context.Context, userID, current, next uuid.UUID) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(tokenString string, secret []byte, claims jwt.Claims, opts libjwt.VerifyOptions) error {
	args := m.Called(tokenString, secret, claims, opts)
	return args.Error(0)
}
