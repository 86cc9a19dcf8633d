package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// TaskService serves the dashboard's task list.
type TaskService interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
}
