package service

import (
	"context"
	"testing"
	"time"
)

func TestAuditWorker_ProcessesJobs(t *testing.T) {
	log := testLogger()
	worker := NewAuditWorker(log, 10)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	worker.Enqueue(&AuditJob{Action: "locality.create", UUID: "u1", Actor: "mapper", ChangesetID: 1})
	worker.Enqueue(&AuditJob{Action: "locality.update", UUID: "u1", Actor: "mapper", ChangesetID: 2})

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not drain after cancel")
	}

	if len(worker.jobs) != 0 {
		t.Errorf("%d jobs left after drain", len(worker.jobs))
	}
}

func TestAuditWorker_DropsWhenFull(t *testing.T) {
	worker := NewAuditWorker(testLogger(), 1)

	// No Run goroutine: the second enqueue finds the queue full and drops.
	worker.Enqueue(&AuditJob{Action: "a"})
	worker.Enqueue(&AuditJob{Action: "b"})

	if len(worker.jobs) != 1 {
		t.Errorf("queued jobs = %d, want 1", len(worker.jobs))
	}
}
