package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventhub/internal/domain/models"
	"eventhub/internal/lib/logger/sl"
	"eventhub/internal/middleware"
	"eventhub/internal/services/auth"
	"eventhub/internal/transport/http/dto"
	"eventhub/internal/transport/http/dto/request"
	"eventhub/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthService interface {
	RegisterNewUser(ctx context.Context, in auth.SignupInput) (models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, accessToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	User(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type Routers struct {
	log         *slog.Logger
	AuthService AuthService
	cookie      CookieConfig
}

func NewRouter(log *slog.Logger, authService AuthService, cookie CookieConfig) *Routers {
	return &Routers{
		log:         log,
		AuthService: authService,
		cookie:      cookie,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account. The password must be repeated in password_conf.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Signup data"
// @Success 201 {object} response.Response{data=dto.UserResponse} "Registered user"
// @Failure 400 {object} response.ErrorResponse "Invalid request or password confirmation mismatch"
// @Failure 409 {object} response.ErrorResponse "Email already in use"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RegisterRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest.WithDetails(err.Error()))
	}

	user, err := r.AuthService.RegisterNewUser(c.Request().Context(), auth.SignupInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		PasswordConf: req.PasswordConf,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordConfirmation):
			return c.JSON(http.StatusBadRequest, response.ErrPasswordConfirmation)
		case errors.Is(err, auth.ErrEmailInUse):
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrEmailInUse)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("user registered successfully", slog.String("user_id", user.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewUserResponse(user)))
}

// Login godoc
// @Summary Log in
// @Description Checks credentials and starts a session. The access token is returned in the body, the refresh token in the rftid cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.TokenResponse "Access token"
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 401 {object} response.ErrorResponse "Invalid password"
// @Failure 404 {object} response.ErrorResponse "User doesn't exist"
// @Failure 429 {object} response.ErrorResponse "Too many failed attempts"
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	pair, err := r.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		case errors.Is(err, auth.ErrPasswordMismatch):
			return c.JSON(http.StatusUnauthorized, response.ErrPasswordMismatch)
		case errors.Is(err, auth.ErrTooManyAttempts):
			return c.JSON(http.StatusTooManyRequests, response.ErrTooManyAttempts)
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	c.SetCookie(RefreshCookie(r.cookie, pair.RefreshToken))

	return c.JSON(http.StatusOK, response.TokenResponse{Token: pair.AccessToken})
}

// RefreshToken godoc
// @Summary Refresh the session
// @Description Exchanges the rftid cookie and the (possibly expired) bearer access token for a new pair. The presented refresh token stops working.
// @Tags auth
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Success 200 {object} response.TokenResponse "New access token, new rftid cookie"
// @Failure 403 {object} response.ErrorResponse "Missing, invalid or stale tokens"
// @Failure 404 {object} response.ErrorResponse "User doesn't exist"
// @Router /refresh_token [get]
func (r *Routers) RefreshToken(c echo.Context) error {
	const op = "http.routers.RefreshToken"

	log := r.log.With(
		slog.String("op", op),
	)

	cookie, err := c.Cookie(r.cookie.Name)
	if err != nil || cookie.Value == "" {
		log.Info("refresh cookie missing")
		return c.JSON(http.StatusForbidden, response.ErrNotAuthorized)
	}

	accessToken, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		log.Info("bad authorization header", sl.Err(err))
		return c.JSON(http.StatusForbidden, response.ErrNotAuthorized)
	}

	pair, err := r.AuthService.Refresh(c.Request().Context(), cookie.Value, accessToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			return c.JSON(http.StatusForbidden, response.ErrNotAuthorized)
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("error refresh tokens", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	c.SetCookie(RefreshCookie(r.cookie, pair.RefreshToken))

	return c.JSON(http.StatusOK, response.TokenResponse{Token: pair.AccessToken})
}

// Logout godoc
// @Summary Log out
// @Description Revokes every refresh token of the caller and clears the rftid cookie.
// @Tags auth
// @Security ApiKeyAuth
// @Success 204 "Logged out"
// @Failure 401 {object} response.ErrorResponse "Valid bearer token required"
// @Router /api/v1/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	claims, ok := middleware.Claims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrUnauthenticated)
	}

	if err := r.AuthService.Logout(c.Request().Context(), claims.UserID); err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		log.Error("logout failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	c.SetCookie(ExpiredRefreshCookie(r.cookie))

	return c.NoContent(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Description Returns the user the bearer access token was issued to.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response{data=dto.UserResponse} "Current user"
// @Failure 401 {object} response.ErrorResponse "Valid bearer token required"
// @Failure 404 {object} response.ErrorResponse "User doesn't exist"
// @Router /api/v1/me [get]
func (r *Routers) Me(c echo.Context) error {
	const op = "http.routers.Me"

	log := r.log.With(
		slog.String("op", op),
	)

	claims, ok := middleware.Claims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrUnauthenticated)
	}

	user, err := r.AuthService.User(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("error get user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewUserResponse(user)))
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Success 200 {object} map[string]string
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
