package memory

import (
	"context"
	"sync"
	"testing"

	"eventhub/internal/domain/models"
	"eventhub/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCtx = context.Background()

func saveTestUser(t *testing.T, s *Storage) uuid.UUID {
	t.Helper()

	id, err := s.SaveUser(testCtx, models.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: []byte("hash"),
	})
	require.NoError(t, err)

	return id
}

func TestStorage_SaveAndFind(t *testing.T) {
	s := New()
	id := saveTestUser(t, s)

	byEmail, err := s.UserByEmail(testCtx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, []byte("hash"), byEmail.PasswordHash)
	assert.False(t, byEmail.CreatedAt.IsZero())

	byID, err := s.UserByID(testCtx, id)
	require.NoError(t, err)
	assert.Equal(t, byEmail, byID)

	_, err = s.SaveUser(testCtx, models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, storage.ErrUserExists)

	_, err = s.UserByID(testCtx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_RotateSessionID(t *testing.T) {
	s := New()
	id := saveTestUser(t, s)

	first := uuid.New()
	require.NoError(t, s.SetSessionID(testCtx, id, uuid.NullUUID{UUID: first, Valid: true}))

	second := uuid.New()
	require.NoError(t, s.RotateSessionID(testCtx, id, first, second))

	err := s.RotateSessionID(testCtx, id, first, uuid.New())
	assert.ErrorIs(t, err, storage.ErrSessionMismatch)

	user, err := s.UserByID(testCtx, id)
	require.NoError(t, err)
	assert.Equal(t, second, user.SessionID.UUID)

	require.NoError(t, s.SetSessionID(testCtx, id, uuid.NullUUID{}))
	assert.ErrorIs(t, s.RotateSessionID(testCtx, id, second, uuid.New()), storage.ErrSessionMismatch)
}

func TestStorage_RotateSessionID_SingleWinner(t *testing.T) {
	s := New()
	id := saveTestUser(t, s)

	current := uuid.New()
	require.NoError(t, s.SetSessionID(testCtx, id, uuid.NullUUID{UUID: current, Valid: true}))

	const workers = 16
	start := make(chan struct{})
	results := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			results <- s.RotateSessionID(testCtx, id, current, uuid.New())
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrSessionMismatch)
	}

	assert.Equal(t, 1, success)
}

func TestStorage_DeleteUser(t *testing.T) {
	s := New()
	id := saveTestUser(t, s)

	require.NoError(t, s.DeleteUser(testCtx, id))

	_, err := s.UserByEmail(testCtx, "ada@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.ErrorIs(t, s.DeleteUser(testCtx, id), storage.ErrUserNotFound)
}
