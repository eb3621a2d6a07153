package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventhub/internal/domain/models"
	libjwt "eventhub/internal/lib/jwt"
	"eventhub/internal/lib/logger/handlers/slogdiscard"
	"eventhub/internal/services/attempts"
	"eventhub/internal/services/token"
	"eventhub/internal/storage"
	"eventhub/internal/storage/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword   = "correct horse"
	maxTestAttempt = 3
)

var (
	appSecret     = []byte("app-secret")
	refreshSecret = []byte("refresh-secret")
)

type fixture struct {
	auth  *Auth
	store *memory.Storage
	codec *libjwt.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	codec := libjwt.NewCodec()

	a := New(
		slogdiscard.NewDiscardLogger(),
		store,
		token.NewAccessIssuer(codec, appSecret, 5*time.Minute),
		token.NewRefreshIssuer(codec, refreshSecret, 7*24*time.Hour, store),
		token.NewPairValidator(codec, appSecret, refreshSecret),
		attempts.NewLocalLimiter(maxTestAttempt, time.Minute),
		bcrypt.MinCost,
	)

	return &fixture{auth: a, store: store, codec: codec}
}

func (f *fixture) register(t *testing.T, email string) models.User {
	t.Helper()

	user, err := f.auth.RegisterNewUser(context.Background(), SignupInput{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		Password:     testPassword,
		PasswordConf: testPassword,
	})
	require.NoError(t, err)

	return user
}

func (f *fixture) login(t *testing.T, email string) *models.TokenPair {
	t.Helper()

	pair, err := f.auth.Login(context.Background(), email, testPassword)
	require.NoError(t, err)

	return pair
}

func (f *fixture) expiredAccessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	past := time.Now().Add(-time.Hour)
	tok, err := f.codec.Sign(token.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(5 * time.Minute)),
		},
	}, appSecret)
	require.NoError(t, err)

	return tok
}

func (f *fixture) sessionOf(t *testing.T, refreshToken string) uuid.UUID {
	t.Helper()

	var claims token.RefreshClaims
	require.NoError(t, f.codec.Verify(refreshToken, refreshSecret, &claims, libjwt.VerifyOptions{}))

	return claims.SessionID
}

func TestRegisterNewUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		user := f.register(t, " Ada@Example.com ")

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada Lovelace", user.FullName())
		assert.False(t, user.SessionID.Valid)
		assert.NotEqual(t, []byte(testPassword), user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(testPassword)))
	})

	t.Run("email in use", func(t *testing.T) {
		_, err := f.auth.RegisterNewUser(ctx, SignupInput{
			Email:        "ADA@example.com",
			Password:     testPassword,
			PasswordConf: testPassword,
		})
		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("password confirmation", func(t *testing.T) {
		_, err := f.auth.RegisterNewUser(ctx, SignupInput{
			Email:        "other@example.com",
			Password:     testPassword,
			PasswordConf: "something else",
		})
		assert.ErrorIs(t, err, ErrPasswordConfirmation)

		_, err = f.store.UserByEmail(ctx, "other@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "ada@example.com")

	t.Run("success", func(t *testing.T) {
		pair := f.login(t, "ADA@example.com")

		assert.Equal(t, user.ID, pair.UserID)

		claims, err := f.auth.Authenticate("Bearer " + pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)

		stored, err := f.store.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasSession(f.sessionOf(t, pair.RefreshToken)))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, ErrPasswordMismatch)

		// a successful login clears the failure count
		f.login(t, "ada@example.com")
	})

	t.Run("second login supersedes the first session", func(t *testing.T) {
		first := f.login(t, "ada@example.com")
		second := f.login(t, "ada@example.com")

		_, err := f.auth.Refresh(ctx, first.RefreshToken, first.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = f.auth.Refresh(ctx, second.RefreshToken, second.AccessToken)
		assert.NoError(t, err)
	})
}

func TestLogin_Lockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "ada@example.com")

	for i := 0; i < maxTestAttempt; i++ {
		_, err := f.auth.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	}

	_, err := f.auth.Login(ctx, "Ada@Example.com", testPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "ada@example.com")

	t.Run("expired access token is accepted", func(t *testing.T) {
		pair := f.login(t, "ada@example.com")
		expired := f.expiredAccessToken(t, user.ID)

		next, err := f.auth.Refresh(ctx, pair.RefreshToken, expired)
		require.NoError(t, err)
		assert.Equal(t, user.ID, next.UserID)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		stored, err := f.store.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasSession(f.sessionOf(t, next.RefreshToken)))
		assert.False(t, stored.HasSession(f.sessionOf(t, pair.RefreshToken)))

		claims, err := f.auth.Authenticate("Bearer " + next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("refresh token is single use", func(t *testing.T) {
		pair := f.login(t, "ada@example.com")

		_, err := f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing tokens", func(t *testing.T) {
		pair := f.login(t, "ada@example.com")

		_, err := f.auth.Refresh(ctx, "", pair.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = f.auth.Refresh(ctx, pair.RefreshToken, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("secrets are not interchangeable", func(t *testing.T) {
		pair := f.login(t, "ada@example.com")

		_, err := f.auth.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)

		forged, err := f.codec.Sign(token.RefreshClaims{
			SessionID: f.sessionOf(t, pair.RefreshToken),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, appSecret)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, forged, pair.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("session of another user", func(t *testing.T) {
		other := f.register(t, "grace@example.com")
		pair := f.login(t, "ada@example.com")

		_, err := f.auth.Refresh(ctx, pair.RefreshToken, f.expiredAccessToken(t, other.ID))
		assert.ErrorIs(t, err, ErrUnauthorized)

		// the failed attempt leaves the victim's session intact
		_, err = f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)
		assert.NoError(t, err)
	})

	t.Run("user gone", func(t *testing.T) {
		gone := f.register(t, "gone@example.com")
		pair := f.login(t, "gone@example.com")

		require.NoError(t, f.store.DeleteUser(ctx, gone.ID))

		_, err := f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRefresh_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "ada@example.com")
	pair := f.login(t, "ada@example.com")

	const workers = 16

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
		start    = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrUnauthorized):
				rejected++
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, rejected)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "ada@example.com")
	pair := f.login(t, "ada@example.com")

	require.NoError(t, f.auth.Logout(ctx, user.ID))

	_, err := f.auth.Refresh(ctx, pair.RefreshToken, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, f.auth.Logout(ctx, uuid.New()), ErrUserNotFound)
}

func TestUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "ada@example.com")

	got, err := f.auth.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = f.auth.User(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", wantErr: ErrMissingAuthHeader},
		{name: "scheme only", header: "Bearer ", wantErr: ErrMissingAuthHeader},
		{name: "basic", header: "Basic dXNlcjpwYXNz", wantErr: ErrInvalidAuthScheme},
		{name: "no scheme", header: "abc.def.ghi", wantErr: ErrInvalidAuthScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate_ExpiredAccessToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate("Bearer " + f.expiredAccessToken(t, uuid.New()))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, libjwt.ErrTokenExpired)
}

func TestRefresh_StoreFailures(t *testing.T) {
	ctx := context.Background()
	codec := libjwt.NewCodec()
	access := token.NewAccessIssuer(codec, appSecret, 5*time.Minute)
	pairs := token.NewPairValidator(codec, appSecret, refreshSecret)

	sid := uuid.New()
	user := models.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		SessionID: uuid.NullUUID{UUID: sid, Valid: true},
	}

	accessToken, err := access.Issue(user)
	require.NoError(t, err)

	refreshToken, err := codec.Sign(token.RefreshClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, refreshSecret)
	require.NoError(t, err)

	t.Run("lookup error is not an auth failure", func(t *testing.T) {
		users := new(MockUserRepository)
		refresh := new(MockRefreshIssuer)
		a := New(slogdiscard.NewDiscardLogger(), users, access, refresh, pairs, attempts.NewLocalLimiter(0, time.Minute), bcrypt.MinCost)

		dbErr := errors.New("connection reset")
		users.On("UserByID", mock.Anything, user.ID).Return(models.User{}, dbErr)

		_, err := a.Refresh(ctx, refreshToken, accessToken)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrUnauthorized)
		refresh.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost rotation race", func(t *testing.T) {
		users := new(MockUserRepository)
		refresh := new(MockRefreshIssuer)
		a := New(slogdiscard.NewDiscardLogger(), users, access, refresh, pairs, attempts.NewLocalLimiter(0, time.Minute), bcrypt.MinCost)

		users.On("UserByID", mock.Anything, user.ID).Return(user, nil)
		refresh.On("Rotate", mock.Anything, mock.AnythingOfType("*models.User"), sid).
			Return("", storage.ErrSessionMismatch)

		pair, err := a.Refresh(ctx, refreshToken, accessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Nil(t, pair)
		refresh.AssertExpectations(t)
	})

	t.Run("rotation store error", func(t *testing.T) {
		users := new(MockUserRepository)
		refresh := new(MockRefreshIssuer)
		a := New(slogdiscard.NewDiscardLogger(), users, access, refresh, pairs, attempts.NewLocalLimiter(0, time.Minute), bcrypt.MinCost)

		dbErr := errors.New("disk full")
		users.On("UserByID", mock.Anything, user.ID).Return(user, nil)
		refresh.On("Rotate", mock.Anything, mock.Anything, sid).Return("", dbErr)

		pair, err := a.Refresh(ctx, refreshToken, accessToken)
		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, pair)
	})
}

func TestRegisterNewUser_StoreError(t *testing.T) {
	users := new(MockUserRepository)
	a := New(slogdiscard.NewDiscardLogger(), users, nil, nil, nil, attempts.NewLocalLimiter(0, time.Minute), bcrypt.MinCost)

	users.On("SaveUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "ada@example.com" && len(u.PasswordHash) > 0
	})).Return(uuid.Nil, storage.ErrUserExists)

	_, err := a.RegisterNewUser(context.Background(), SignupInput{
		Email:        "ada@example.com",
		Password:     testPassword,
		PasswordConf: testPassword,
	})
	assert.ErrorIs(t, err, ErrEmailInUse)
	users.AssertExpectations(t)
}
