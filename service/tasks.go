// Package service implements the task operations on behalf of an
// authenticated owner.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

type Tasks struct {
	store store.TaskStore
	now   func() time.Time
	newID func() string
}

func NewTasks(s store.TaskStore) *Tasks {
	return &Tasks{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// CanModify reports whether ownerID may update or delete task.
func CanModify(ownerID string, task *models.Task) bool {
	return task != nil && ownerID != "" && task.User == ownerID
}

func (t *Tasks) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	tasks, err := t.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (t *Tasks) Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	now := t.now()
	task := &models.Task{
		ID:          t.newID(),
		User:        ownerID,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.store.InsertTask(ctx, task); err != nil {
		return nil, &InternalError{Err: err}
	}
	return task, nil
}

// Update applies the non-empty fields of in. Empty fields keep their
// current value, so a description cannot be cleared this way.
func (t *Tasks) Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error) {
	task, err := t.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		task.Title = in.Title
	}
	if in.Description != "" {
		task.Description = in.Description
	}
	task.UpdatedAt = t.now()

	if err := t.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &InternalError{Err: err}
	}
	return task, nil
}

func (t *Tasks) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := t.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := t.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &InternalError{Err: err}
	}
	return nil
}

func (t *Tasks) owned(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := t.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	if !CanModify(ownerID, task) {
		return nil, ErrNotFound
	}
	return task, nil
}
