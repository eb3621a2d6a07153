package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain/models"
	"eventhub/internal/storage"

	"github.com/google/uuid"
)

// Storage keeps users in process memory. Used for the local environment and tests.
type Storage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func New() *Storage {
	return &Storage{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (s *Storage) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	const op = "storage.memory.SaveUser"

	if err := ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.byID[user.ID] = user
	s.byEmail[email] = user.ID

	return user.ID, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.memory.UserByEmail"

	if err := ctx.Err(); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return s.byID[id], nil
}

func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	const op = "storage.memory.UserByID"

	if err := ctx.Err(); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return user, nil
}

func (s *Storage) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error {
	const op = "storage.memory.SetSessionID"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	user.SessionID = sessionID
	user.UpdatedAt = s.now().UTC()
	s.byID[userID] = user

	return nil
}

func (s *Storage) RotateSessionID(ctx context.Context, userID, current, next uuid.UUID) error {
	const op = "storage.memory.RotateSessionID"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	if !user.HasSession(current) {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionMismatch)
	}

	user.SessionID = uuid.NullUUID{UUID: next, Valid: true}
	user.UpdatedAt = s.now().UTC()
	s.byID[userID] = user

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	const op = "storage.memory.DeleteUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	delete(s.byEmail, strings.ToLower(user.Email))
	delete(s.byID, userID)

	return nil
}
