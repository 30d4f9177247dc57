package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, title, description, created_at, updated_at
        FROM tasks WHERE user_id = $1
        ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.User, &task.Title, &task.Description, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, title, description, created_at, updated_at
        FROM tasks WHERE id = $1`, id)
	var task models.Task
	err := row.Scan(&task.ID, &task.User, &task.Title, &task.Description, &task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Store) InsertTask(ctx context.Context, task *models.Task) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO tasks (id, user_id, title, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.User, task.Title, task.Description, task.CreatedAt, task.UpdatedAt)
	return err
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE tasks SET title = $1, description = $2, updated_at = $3
        WHERE id = $4`,
		task.Title, task.Description, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}
