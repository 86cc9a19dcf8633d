// Package queue implements the asynchronous audit pipeline. Admin commands
// enqueue events without blocking the request; a fixed set of workers
// persists them, sharded by actor so one actor's events stay ordered.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/api/metrics"
	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	insertTimeout  = 5 * time.Second
)

// AuditPipeline fans audit events out to sharded workers writing to the
// audit repository.
type AuditPipeline struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditPipeline creates a pipeline with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditPipeline(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditPipeline {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &AuditPipeline{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *AuditPipeline) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Record assigns the event an id and enqueues it on the worker responsible
// for its actor. When the worker's buffer is full the event is dropped and
// logged; audit must never stall a request.
func (p *AuditPipeline) Record(event domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	idx := p.shardIndex(event.Actor)
	select {
	case p.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(workerLabel(idx)).Set(float64(len(p.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		p.log.Warn().Str("action", event.Action).Str("actor", event.Actor).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an actor deterministically to a worker index.
func (p *AuditPipeline) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32()) % len(p.workers)
}

func (p *AuditPipeline) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			insertCtx, cancel := context.WithTimeout(context.Background(), insertTimeout)
			err := p.repo.Insert(insertCtx, &event)
			cancel()
			if err != nil {
				metrics.AuditEventsErrorsTotal.Inc()
				p.log.Error().Err(err).
					Str("event_id", event.ID).
					Int("worker_id", id).
					Msg("audit persistence failed")
				continue
			}
			metrics.AuditEventsWrittenTotal.WithLabelValues(event.Action).Inc()
			metrics.AuditQueueDepth.WithLabelValues(workerLabel(id)).Set(float64(len(ch)))
		}
	}
}

func workerLabel(id int) string {
	return strconv.Itoa(id)
}
