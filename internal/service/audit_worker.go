package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/metrics"
)

// AuditJob is one structured operations-log entry. The durable audit trail
// lives in the changeset and archive tables; the worker gives operators a
// searchable log without adding latency to the edit path.
type AuditJob struct {
	Action      string
	UUID        string
	Actor       string
	ChangesetID int64
	Detail      map[string]any
}

// AuditEnqueuer enqueues audit jobs.
type AuditEnqueuer interface {
	Enqueue(job *AuditJob)
}

// AuditWorker buffers audit entries and writes them via a single worker goroutine.
type AuditWorker struct {
	log  *logrus.Logger
	jobs chan *AuditJob
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}

	return &AuditWorker{
		log:  log,
		jobs: make(chan *AuditJob, queueSize),
	}
}

// Enqueue adds an audit job. Non-blocking; drops the job if the queue is full.
func (w *AuditWorker) Enqueue(job *AuditJob) {
	select {
	case w.jobs <- job:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("action", job.Action).Warn("audit queue full, dropping entry")
	}
}

// Run processes audit jobs until the context is cancelled, then drains remaining jobs.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.process(job)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(job *AuditJob) {
	fields := logrus.Fields{
		"action":       job.Action,
		"actor":        job.Actor,
		"uuid":         job.UUID,
		"changeset_id": job.ChangesetID,
	}

	for k, v := range job.Detail {
		fields[k] = v
	}

	w.log.WithFields(fields).Info("audit")
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
}

// auditAsync enqueues an audit job if a worker is configured.
func auditAsync(w AuditEnqueuer, action, localityUUID, actor string, changesetID int64, detail map[string]any) {
	if w == nil {
		return
	}

	w.Enqueue(&AuditJob{
		Action:      action,
		UUID:        localityUUID,
		Actor:       actor,
		ChangesetID: changesetID,
		Detail:      detail,
	})
}
