// Package store declares the persistence contract shared by the SQL and
// MongoDB backends.
package store

import (
	"context"
	"errors"

	"github.com/Kishan-kumar001/mern-task-manager/models"
)

var (
	// ErrRecordNotFound is returned when a lookup by id or username matches nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateUser is returned by InsertUser when the username is taken.
	ErrDuplicateUser = errors.New("user already exists")
)

type TaskStore interface {
	ListTasks(ctx context.Context, ownerID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	InsertTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
}

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store is a full backend as opened by the server.
type Store interface {
	TaskStore
	UserStore
	Close() error
}
