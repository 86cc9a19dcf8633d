package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// AuditSink accepts audit events for asynchronous persistence. Record must
// not block the calling request beyond a bounded enqueue.
type AuditSink interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
