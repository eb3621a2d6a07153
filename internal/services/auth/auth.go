package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"eventhub/internal/domain/models"
	"eventhub/internal/lib/logger/sl"
	"eventhub/internal/metrics"
	"eventhub/internal/services/attempts"
	"eventhub/internal/services/token"
	"eventhub/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordMismatch     = errors.New("password mismatch")
	ErrEmailInUse           = errors.New("email already in use")
	ErrPasswordConfirmation = errors.New("password and confirmation do not match")
	ErrTooManyAttempts      = errors.New("too many login attempts")
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error
}

type AccessIssuer interface {
	Issue(user models.User) (string, error)
	Parse(tokenString string) (*token.AccessClaims, error)
}

type RefreshIssuer interface {
	Issue(ctx context.Context, user *models.User) (string, error)
	Rotate(ctx context.Context, user *models.User, presented uuid.UUID) (string, error)
}

type PairValidator interface {
	Validate(refreshToken, accessToken string) token.Result
}

type Auth struct {
	log        *slog.Logger
	users      UserRepository
	access     AccessIssuer
	refresh    RefreshIssuer
	pairs      PairValidator
	limiter    attempts.Limiter
	bcryptCost int
}

func New(
	log *slog.Logger,
	users UserRepository,
	access AccessIssuer,
	refresh RefreshIssuer,
	pairs PairValidator,
	limiter attempts.Limiter,
	bcryptCost int,
) *Auth {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Auth{
		log:        log,
		users:      users,
		access:     access,
		refresh:    refresh,
		pairs:      pairs,
		limiter:    limiter,
		bcryptCost: bcryptCost,
	}
}

type SignupInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	PasswordConf string
}

func (a *Auth) RegisterNewUser(ctx context.Context, in SignupInput) (models.User, error) {
	const op = "auth.RegisterNewUser"

	email := strings.ToLower(strings.TrimSpace(in.Email))

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("register user")

	if in.Password != in.PasswordConf {
		log.Info("password confirmation mismatch")

		return models.User{}, fmt.Errorf("%s: %w", op, ErrPasswordConfirmation)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.bcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: passHash,
	}

	id, err := a.users.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists", sl.Err(err))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrEmailInUse)
		}

		log.Error("failed to save user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := a.users.UserByID(ctx, id)
	if err != nil {
		log.Error("failed to read back user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", id.String()))

	return saved, nil
}

// Login checks credentials and starts a new session, replacing any previous one.
func (a *Auth) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "auth.Login"

	key := attempts.Key(email)

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", key),
	)

	log.Info("attempting to login user")

	blocked, retryAfter, err := a.limiter.Blocked(ctx, key)
	if err != nil {
		// the lockout is best effort; a limiter outage does not block logins
		log.Error("failed to check login attempts", sl.Err(err))
	}
	if blocked {
		log.Warn("login locked", slog.Duration("retry_after", retryAfter))
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeLocked).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	user, err := a.users.UserByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeUserNotFound).Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomePasswordInvalid).Inc()

		if err := a.limiter.Fail(ctx, key); err != nil {
			log.Error("failed to record login attempt", sl.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	pair, err := a.issuePair(ctx, &user, func() (string, error) {
		return a.refresh.Issue(ctx, &user)
	})
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.limiter.Reset(ctx, key); err != nil {
		log.Error("failed to reset login attempts", sl.Err(err))
	}

	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("user logged in successfully")

	return pair, nil
}

// Refresh exchanges a refresh token and the (possibly expired) access token it
// was issued with for a new pair. The presented refresh token stops working.
func (a *Auth) Refresh(ctx context.Context, refreshToken, accessToken string) (*models.TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	if refreshToken == "" || accessToken == "" {
		log.Info("missing token")
		metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	res := a.pairs.Validate(refreshToken, accessToken)
	if !res.Valid {
		log.Info("invalid token pair", sl.Err(res.Reason))
		metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	log = log.With(slog.String("user_id", res.Access.UserID.String()))

	user, err := a.users.UserByID(ctx, res.Access.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeUserNotFound).Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))
		metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeError).Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.HasSession(res.Refresh.SessionID) {
		log.Info("stale refresh session")
		metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeSessionMismatch).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	pair, err := a.issuePair(ctx, &user, func() (string, error) {
		return a.refresh.Rotate(ctx, &user, res.Refresh.SessionID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrSessionMismatch) {
			log.Info("refresh session rotated concurrently")
			metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeSessionMismatch).Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		log.Error("failed to issue tokens", sl.Err(err))
		metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeError).Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("session refreshed")

	return pair, nil
}

// issuePair signs the access token before touching the stored session so a
// signing failure leaves the session as it was.
func (a *Auth) issuePair(ctx context.Context, user *models.User, refresh func() (string, error)) (*models.TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accessToken, err := a.access.Issue(*user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := refresh()
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout drops the stored session id; every refresh token of the user stops working.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "auth.Logout"

	log := a.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	if err := a.users.SetSessionID(ctx, userID, uuid.NullUUID{}); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to clear session", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged out")

	return nil
}

func (a *Auth) User(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "auth.User"

	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		a.log.Error("failed to get user", slog.String("op", op), sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Authenticate resolves an Authorization header value to access claims.
func (a *Auth) Authenticate(header string) (*token.AccessClaims, error) {
	const op = "auth.Authenticate"

	raw, err := BearerToken(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims, err := a.access.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}

	return claims, nil
}
