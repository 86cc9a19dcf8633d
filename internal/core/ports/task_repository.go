package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// TaskRepository reads dashboard tasks from the backend row store.
type TaskRepository interface {
	// ListByUser returns the user's tasks newest first, subtasks populated.
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
}
