package domain

import "time"

// Task is a dashboard item owned by a single user.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Subtasks  []Subtask `json:"subtasks"`
}

// Subtask is a checklist entry under a task.
type Subtask struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}
