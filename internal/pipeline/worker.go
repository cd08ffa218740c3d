package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/taskdraft/internal/answer"
	"github.com/dgallion1/taskdraft/internal/store"
)

// Documents is the slice of the document store a worker needs.
type Documents interface {
	Get(ctx context.Context, userID, id string) (*store.Document, error)
	SetAnswer(ctx context.Context, userID, id string, index int, answer string) error
	Update(ctx context.Context, userID, id string, p store.Patch) (*store.Document, error)
}

// Drafter produces answers for a document's questions.
type Drafter interface {
	AnswerAll(ctx context.Context, doc *store.Document, onlyMissing bool, fn func(answer.Draft)) error
	AnswerBatch(ctx context.Context, doc *store.Document, onlyMissing bool, fn func(answer.Draft)) error
}

// Worker processes a single drafting job.
type Worker struct {
	drafter Drafter
	docs    Documents
	log     *slog.Logger
}

func NewWorker(drafter Drafter, docs Documents, log *slog.Logger) *Worker {
	return &Worker{drafter: drafter, docs: docs, log: log}
}

// Process drafts the job's questions and stores every answer as it arrives.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)

	job.SetStatus(StatusDrafting, "loading")
	doc, err := w.docs.Get(ctx, job.UserID, job.DocID)
	if err != nil {
		log.Error("load document failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}

	pending := answer.Pending(doc, job.OnlyMissing)
	job.SetTotal(len(pending))
	if len(pending) == 0 {
		log.Info("nothing to draft")
		job.SetStatus(StatusCompleted, "done")
		return
	}

	w.setDocStatus(ctx, log, job, store.StatusDrafting)
	job.SetStatus(StatusDrafting, "drafting")
	log.Info("drafting started", "questions", len(pending), "mode", job.Mode)

	// SetAnswer only touches one index, so edits to other answers made
	// while the job runs are kept.
	save := func(d answer.Draft) {
		if d.Err != nil {
			job.AddError(fmt.Sprintf("question %d: %s", d.Index, d.Err))
			job.IncrFailed()
			return
		}
		if err := w.docs.SetAnswer(ctx, job.UserID, job.DocID, d.Index, d.Answer); err != nil {
			log.Error("store answer failed", "index", d.Index, "error", err)
			job.AddError(fmt.Sprintf("store %d: %s", d.Index, err))
			job.IncrFailed()
			return
		}
		job.IncrAnswered()
		log.Debug("answer stored", "index", d.Index, "provider", d.Provider)
	}

	if job.Mode == ModeBatch {
		err = w.drafter.AnswerBatch(ctx, doc, job.OnlyMissing, save)
		if err != nil && ctx.Err() == nil {
			log.Warn("batch drafting failed, falling back to serial", "error", err)
			job.AddError(fmt.Sprintf("batch: %s", err))
			job.SetStatus(StatusDrafting, "drafting_serial")
			err = w.drafter.AnswerAll(ctx, doc, job.OnlyMissing, save)
		}
	} else {
		err = w.drafter.AnswerAll(ctx, doc, job.OnlyMissing, save)
	}

	snap := job.Snapshot()
	answered := snap.Progress.QuestionsAnswered
	log.Info("drafting finished", "answered", answered, "failed", snap.Progress.QuestionsFailed, "error", err)

	final := store.StatusDraft
	switch {
	case err != nil:
		job.AddError(err.Error())
		if answered > 0 {
			job.SetStatus(StatusPartial, "cancelled")
		} else {
			job.SetStatus(StatusFailed, "cancelled")
		}
	case answered == len(pending):
		final = store.StatusReady
		job.SetStatus(StatusCompleted, "done")
	case answered > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "drafting")
	}
	w.setDocStatus(ctx, log, job, final)
}

// setDocStatus records the drafting state on the document. It runs even
// after ctx is cancelled so a stopped job does not leave the document
// marked as drafting.
func (w *Worker) setDocStatus(ctx context.Context, log *slog.Logger, job *Job, status string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := w.docs.Update(ctx, job.UserID, job.DocID, store.Patch{Status: &status}); err != nil {
		log.Warn("update document status failed", "status", status, "error", err)
	}
}
