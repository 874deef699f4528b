package repository

import (
	"context"
	"database/sql"
	"errors"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads and provisions rows of the usuarios table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername fetches a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `
		SELECT username, password
		FROM usuarios
		WHERE username = $1
		LIMIT 1
	`
	var user models.User
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&user.Username, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Upsert stores the hash for username, replacing any previous password.
func (r *UserRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	const query = `
		INSERT INTO usuarios (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password
	`
	_, err := r.db.ExecContext(ctx, query, username, passwordHash)
	return err
}
