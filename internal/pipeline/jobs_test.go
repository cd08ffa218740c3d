package pipeline

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusDrafting, "loading"},
		{StatusDrafting, "drafting"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusPartial, StatusFailed} {
		if !s.Done() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusDrafting, ""} {
		if s.Done() {
			t.Errorf("expected %q not to be terminal", s)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeSerial, true},
		{"serial", ModeSerial, true},
		{"batch", ModeBatch, true},
		{"parallel", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("doc-1", "u1", ModeBatch, true)
	if len(job.ID) != 26 {
		t.Errorf("expected 26-char ULID, got %q", job.ID)
	}
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("unexpected initial state %q/%q", job.Status, job.Phase)
	}
	if job.Mode != ModeBatch || !job.OnlyMissing {
		t.Errorf("unexpected options %q/%v", job.Mode, job.OnlyMissing)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("question 3: rate limited")
	job.AddError("question 7: empty answer")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "question 3: rate limited" {
		t.Errorf("expected first error %q, got %q", "question 3: rate limited", snap.Progress.Errors[0])
	}

	// the snapshot must not alias the job's error slice
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "question 3: rate limited" {
		t.Error("snapshot errors alias job state")
	}
}

func TestJob_Counters(t *testing.T) {
	job := &Job{ID: "count-test", UpdatedAt: time.Now()}
	job.SetTotal(5)
	job.IncrAnswered()
	job.IncrAnswered()
	job.IncrAnswered()
	job.IncrFailed()

	snap := job.Snapshot()
	if snap.Progress.TotalQuestions != 5 {
		t.Errorf("expected 5 total questions, got %d", snap.Progress.TotalQuestions)
	}
	if snap.Progress.QuestionsAnswered != 3 {
		t.Errorf("expected 3 answered, got %d", snap.Progress.QuestionsAnswered)
	}
	if snap.Progress.QuestionsFailed != 1 {
		t.Errorf("expected 1 failed, got %d", snap.Progress.QuestionsFailed)
	}
}

func TestJob_ConcurrentUpdates(t *testing.T) {
	job := &Job{ID: "race-test"}
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.IncrAnswered()
			_ = job.Snapshot()
		}()
	}
	wg.Wait()
	if got := job.Snapshot().Progress.QuestionsAnswered; got != 50 {
		t.Errorf("expected 50 answered, got %d", got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_Active(t *testing.T) {
	store := NewJobStore(time.Hour)
	done := &Job{ID: "done", DocID: "doc-1", Status: StatusCompleted}
	store.Put(done)
	if store.Active("doc-1") != nil {
		t.Fatal("finished job should not be active")
	}

	running := &Job{ID: "running", DocID: "doc-1", Status: StatusDrafting}
	store.Put(running)
	if got := store.Active("doc-1"); got != running {
		t.Fatalf("expected running job, got %v", got)
	}
	if store.Active("doc-2") != nil {
		t.Fatal("unexpected active job for other document")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	stuck := &Job{ID: "stuck", Status: StatusDrafting, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(stuck)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("stuck") == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}

func TestGenerateULID(t *testing.T) {
	src := &ulidSource{now: func() time.Time { return time.UnixMilli(1700000000000) }}
	seen := make(map[string]bool)
	prev := ""
	for range 100 {
		id := src.next()
		if len(id) != 26 {
			t.Fatalf("expected 26 chars, got %q", id)
		}
		if strings.Trim(id, crockford) != "" {
			t.Fatalf("unexpected characters in %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if id <= prev {
			t.Fatalf("ids not monotonic: %q after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
	// 1700000000000 ms encodes to this 10-char timestamp prefix.
	if !strings.HasPrefix(prev, "01HF7YAT00") {
		t.Errorf("unexpected timestamp prefix in %q", prev)
	}
}

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("zero value encoded as %q", got)
	}
	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("max value encoded as %q", got)
	}
}
