package models

import "time"

// Task is a personal to-do item. User holds the id of the owning user.
type Task struct {
	ID          string    `json:"id" bson:"_id"`
	User        string    `json:"user" bson:"user"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TaskInput is the request body of create and update calls.
type TaskInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}
