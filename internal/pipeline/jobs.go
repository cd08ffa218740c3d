package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a drafting job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusDrafting  JobStatus = "drafting"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Mode selects how a job talks to the LLM.
type Mode string

const (
	// ModeSerial drafts one question per request, pausing between calls.
	ModeSerial Mode = "serial"
	// ModeBatch drafts every question with one structured request.
	ModeBatch Mode = "batch"
)

// ParseMode maps a request value to a Mode; blank means serial.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeSerial:
		return ModeSerial, true
	case ModeBatch:
		return ModeBatch, true
	}
	return "", false
}

// Job tracks the drafting of one document's answers.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`

	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Mode        Mode      `json:"mode"`
	OnlyMissing bool      `json:"only_missing"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks drafting progress.
type Progress struct {
	TotalQuestions    int      `json:"total_questions"`
	QuestionsAnswered int      `json:"questions_answered"`
	QuestionsFailed   int      `json:"questions_failed"`
	Errors            []string `json:"errors"`
}

// NewJob creates a queued job for a document.
func NewJob(docID, userID string, mode Mode, onlyMissing bool) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		DocID:       docID,
		UserID:      userID,
		Status:      StatusQueued,
		Phase:       "queued",
		Mode:        mode,
		OnlyMissing: onlyMissing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Active returns the unfinished job for a document, if any.
func (s *JobStore) Active(docID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.DocID == docID && !job.currentStatus().Done() {
			return job
		}
	}
	return nil
}

// Cleanup removes finished jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) currentStatus() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotal records how many questions the job will draft.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalQuestions = n
	j.UpdatedAt = time.Now()
}

// IncrAnswered counts a stored answer.
func (j *Job) IncrAnswered() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.QuestionsAnswered++
	j.UpdatedAt = time.Now()
}

// IncrFailed counts a question that could not be drafted.
func (j *Job) IncrFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.QuestionsFailed++
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	UserID      string    `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Mode        Mode      `json:"mode"`
	OnlyMissing bool      `json:"only_missing"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Mode:        j.Mode,
		OnlyMissing: j.OnlyMissing,
		Progress: Progress{
			TotalQuestions:    j.Progress.TotalQuestions,
			QuestionsAnswered: j.Progress.QuestionsAnswered,
			QuestionsFailed:   j.Progress.QuestionsFailed,
			Errors:            errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
