package graphql

import (
	"context"
	"log/slog"
	"net/http"

	"eventhub/internal/domain/models"
	"eventhub/internal/lib/logger/sl"
	"eventhub/internal/services/auth"
	"eventhub/internal/services/token"
	httptransport "eventhub/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go"
)

type AuthService interface {
	RegisterNewUser(ctx context.Context, in auth.SignupInput) (models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	User(ctx context.Context, userID uuid.UUID) (models.User, error)
	Authenticate(header string) (*token.AccessClaims, error)
}

type Resolver struct {
	log      *slog.Logger
	auth     AuthService
	cookie   httptransport.CookieConfig
	validate *validator.Validate
}

type signupInput struct {
	Fname        string `validate:"required,max=100"`
	Lname        string `validate:"required,max=100"`
	Email        string `validate:"required,email"`
	Password     string `validate:"required,min=8,max=64"`
	PasswordConf string `validate:"required"`
}

func (r *Resolver) Signup(ctx context.Context, args struct{ User signupInput }) (*userResolver, error) {
	const op = "graphql.Resolver.Signup"

	if err := r.validate.Struct(args.User); err != nil {
		return nil, newError(CodeBadUserInput, err.Error(), err)
	}

	user, err := r.auth.RegisterNewUser(ctx, auth.SignupInput{
		FirstName:    args.User.Fname,
		LastName:     args.User.Lname,
		Email:        args.User.Email,
		Password:     args.User.Password,
		PasswordConf: args.User.PasswordConf,
	})
	if err != nil {
		r.log.Info("signup failed", slog.String("op", op), sl.Err(err))
		return nil, mapError(err)
	}

	return &userResolver{u: user}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authResponseResolver, error) {
	const op = "graphql.Resolver.Login"

	pair, err := r.auth.Login(ctx, args.Email, args.Password)
	if err != nil {
		r.log.Info("login failed", slog.String("op", op), sl.Err(err))
		return nil, mapError(err)
	}

	if w := responseWriter(ctx); w != nil {
		http.SetCookie(w, httptransport.RefreshCookie(r.cookie, pair.RefreshToken))
	}

	return &authResponseResolver{token: pair.AccessToken}, nil
}

func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	const op = "graphql.Resolver.Logout"

	claims, err := r.auth.Authenticate(authorization(ctx))
	if err != nil {
		return false, mapError(err)
	}

	if err := r.auth.Logout(ctx, claims.UserID); err != nil {
		r.log.Error("logout failed", slog.String("op", op), sl.Err(err))
		return false, mapError(err)
	}

	if w := responseWriter(ctx); w != nil {
		http.SetCookie(w, httptransport.ExpiredRefreshCookie(r.cookie))
	}

	return true, nil
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	claims, err := r.auth.Authenticate(authorization(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	user, err := r.auth.User(ctx, claims.UserID)
	if err != nil {
		return nil, mapError(err)
	}

	return &userResolver{u: user}, nil
}

type userResolver struct {
	u models.User
}

func (r *userResolver) ID() graphql.ID {
	return graphql.ID(r.u.ID.String())
}

func (r *userResolver) Fname() string {
	return r.u.FirstName
}

func (r *userResolver) Lname() string {
	return r.u.LastName
}

func (r *userResolver) FullName() string {
	return r.u.FullName()
}

func (r *userResolver) Email() string {
	return r.u.Email
}

func (r *userResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: r.u.CreatedAt}
}

type authResponseResolver struct {
	token string
}

func (r *authResponseResolver) Token() string {
	return r.token
}
