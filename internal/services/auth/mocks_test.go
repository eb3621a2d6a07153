package auth

import (
	"context"

	"eventhub/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) UserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

type MockRefreshIssuer struct {
	mock.Mock
}

func (m *MockRefreshIssuer) Issue(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshIssuer) Rotate(ctx context.Context, user *models.User, presented uuid.UUID) (string, error) {
	args := m.Called(ctx, user, presented)
	return args.String(0), args.Error(1)
}
