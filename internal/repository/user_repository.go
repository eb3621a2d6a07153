package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain/models"
	"eventhub/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	usersTable = "users"

	uniqueViolation = "23505"
)

var userColumns = []string{
	"id",
	"fname",
	"lname",
	"email",
	"password",
	"session_id",
	"created_at",
	"updated_at",
}

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserRepo) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	const op = "repository.user_repository.SaveUser"

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query, args, err := r.sb.Insert(usersTable).
		Columns(
			"id",
			"fname",
			"lname",
			"email",
			"password",
		).
		Values(
			user.ID,
			user.FirstName,
			user.LastName,
			strings.ToLower(user.Email),
			user.PasswordHash,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "repository.user_repository.UserByEmail"

	user, err := r.findOne(ctx, sq.Eq{"email": strings.ToLower(email)})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) UserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "repository.user_repository.UserByID"

	user, err := r.findOne(ctx, sq.Eq{"id": userID})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) findOne(ctx context.Context, where sq.Sqlizer) (models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From(usersTable).Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("can't build sql: %w", err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.SessionID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return user, nil
}

func (r *UserRepo) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.NullUUID) error {
	const op = "repository.user_repository.SetSessionID"

	query, args, err := r.sb.Update(usersTable).
		Set("session_id", sessionID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// RotateSessionID is a compare-and-swap on session_id; of two concurrent
// rotations from the same value only one updates a row.
func (r *UserRepo) RotateSessionID(ctx context.Context, userID, current, next uuid.UUID) error {
	const op = "repository.user_repository.RotateSessionID"

	query, args, err := r.sb.Update(usersTable).
		Set("session_id", next).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.And{
			sq.Eq{"id": userID},
			sq.Eq{"session_id": current},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionMismatch)
	}

	return nil
}

func (r *UserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.user_repository.DeleteUser"

	query, args, err := r.sb.Delete(usersTable).Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}
