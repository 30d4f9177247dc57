package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

// InsertUser relies on the UNIQUE constraint on username, so concurrent
// registrations of one name cannot both succeed.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicateUser
	}
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE id = $1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE username = $1", username)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
