package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/taskdraft/internal/config"
)

// ErrJobActive is returned when a document already has an unfinished job.
var ErrJobActive = errors.New("document already has a drafting job")

// Orchestrator runs drafting jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	worker  *Worker
	log     *slog.Logger
	workers int

	submitMu sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(cfg config.Config, drafter Drafter, docs Documents, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		worker:  NewWorker(drafter, docs, log),
		log:     log,
		workers: max(cfg.WorkerCount, 1),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels running jobs and waits for the workers to exit.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a job. A document can have only one unfinished job.
func (o *Orchestrator) Submit(job *Job) error {
	o.submitMu.Lock()
	defer o.submitMu.Unlock()

	if active := o.jobs.Active(job.DocID); active != nil {
		return fmt.Errorf("%w: %s", ErrJobActive, active.ID)
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.log.Info("job queued", "job_id", job.ID, "doc_id", job.DocID, "mode", job.Mode)
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// ActiveJob returns the unfinished job for a document, if any.
func (o *Orchestrator) ActiveJob(docID string) *Job {
	return o.jobs.Active(docID)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
