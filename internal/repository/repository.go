package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db   *pgxpool.Pool
	User *UserRepo
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		db:   db,
		User: NewUserRepository(db),
	}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) Close() {
	r.db.Close()
}
