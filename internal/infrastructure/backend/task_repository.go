package backend

import (
	"context"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

const (
	tasksTable    = "tasks"
	subtasksTable = "subtasks"
)

// TaskRepository reads dashboard tasks from the backend row store.
type TaskRepository struct {
	client *Client
}

func NewTaskRepository(client *Client) *TaskRepository {
	return &TaskRepository{client: client}
}

type taskRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type subtaskRow struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}

// ListByUser returns the user's tasks newest first with subtasks attached.
// Two round trips: one for tasks, one batched "in" select for subtasks.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	var rows []taskRow
	filter := map[string]string{"user_id": "eq." + userID}
	if err := r.client.Select(ctx, tasksTable, filter, "created_at.desc", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Task{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var subRows []subtaskRow
	subFilter := map[string]string{"task_id": "in.(" + strings.Join(ids, ",") + ")"}
	if err := r.client.Select(ctx, subtasksTable, subFilter, "", &subRows); err != nil {
		return nil, err
	}

	byTask := make(map[string][]domain.Subtask, len(rows))
	for _, sub := range subRows {
		byTask[sub.TaskID] = append(byTask[sub.TaskID], domain.Subtask{
			ID:     sub.ID,
			TaskID: sub.TaskID,
			Title:  sub.Title,
			Done:   sub.Done,
		})
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, domain.Task{
			ID:        row.ID,
			UserID:    row.UserID,
			Title:     row.Title,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
			Subtasks:  byTask[row.ID],
		})
	}
	return tasks, nil
}
