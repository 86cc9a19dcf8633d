package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

type recordingAuditRepo struct {
	inserts chan domain.AuditEvent
}

func (r *recordingAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.inserts <- *event
	return nil
}

func TestAuditPipeline_PersistsEvents(t *testing.T) {
	repo := &recordingAuditRepo{inserts: make(chan domain.AuditEvent, 8)}
	pipeline := NewAuditPipeline(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pipeline.Start(ctx)

	pipeline.Record(domain.AuditEvent{Actor: "admin-1", Action: "create", TargetID: "u-1"})

	select {
	case got := <-repo.inserts:
		if got.Action != "create" || got.TargetID != "u-1" {
			t.Fatalf("unexpected event: %+v", got)
		}
		if got.ID == "" {
			t.Fatalf("event id not assigned")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never persisted")
	}
}

func TestAuditPipeline_SameActorSameWorker(t *testing.T) {
	pipeline := NewAuditPipeline(4, &recordingAuditRepo{inserts: make(chan domain.AuditEvent, 1)}, zerolog.Nop())

	first := pipeline.shardIndex("admin-1")
	for i := 0; i < 10; i++ {
		if got := pipeline.shardIndex("admin-1"); got != first {
			t.Fatalf("shard index not deterministic: %d vs %d", got, first)
		}
	}
}
