package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type AuthRepository interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByRefreshToken(ctx context.Context, token string) (User, error)
	UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, userID int) error
}

type postgresAuthRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAuthRepository(pool *pgxpool.Pool) AuthRepository {
	return &postgresAuthRepository{pool: pool}
}

const userColumns = `id, username, password_hash, COALESCE(full_name, ''), COALESCE(email, ''), refresh_token, refresh_token_expires_at`

func (r *postgresAuthRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM authdata WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *postgresAuthRepository) GetByRefreshToken(ctx context.Context, token string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM authdata WHERE refresh_token = $1`
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *postgresAuthRepository) UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `UPDATE authdata
	          SET refresh_token = $2, refresh_token_expires_at = $3
	          WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresAuthRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	query := `UPDATE authdata
	          SET refresh_token = NULL, refresh_token_expires_at = NULL
	          WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.RefreshToken, &u.RefreshTokenExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}
