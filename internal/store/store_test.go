package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{
		UserID:     "u1",
		SourceText: "1. ¿Qué es un proceso?\n2. ¿Qué es un hilo?",
		Questions:  []string{"1. ¿Qué es un proceso?", "2. ¿Qué es un hilo?"},
	}
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Get(ctx, "u1", doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TemplateType != "FOC" {
		t.Errorf("template = %q, want FOC", got.TemplateType)
	}
	if got.Status != StatusDraft {
		t.Errorf("status = %q, want %q", got.Status, StatusDraft)
	}
	if len(got.Answers) != 2 || got.Answers[0] != "" || got.Answers[1] != "" {
		t.Errorf("expected two empty answers, got %v", got.Answers)
	}
	if got.Attachments == nil || len(got.Attachments) != 0 {
		t.Errorf("expected empty attachments, got %v", got.Attachments)
	}
	if !got.CreatedAt.Equal(doc.CreatedAt) {
		t.Errorf("created_at = %s, want %s", got.CreatedAt, doc.CreatedAt)
	}
}

func TestCreateRequiresUser(t *testing.T) {
	s := openTestStore(t)
	if err := s.Create(context.Background(), &Document{}); err == nil {
		t.Fatal("expected error without user id")
	}
}

func TestGetOtherUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{UserID: "u1", Questions: []string{"q"}}
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Get(ctx, "u2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := &Document{UserID: "u1", Subject: "Sistemas", Questions: []string{"a"}}
	second := &Document{UserID: "u1", Subject: "Redes", Questions: []string{"a", "b"}}
	other := &Document{UserID: "u2", Subject: "Ajeno"}
	for _, d := range []*Document{first, second, other} {
		if err := s.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	if list[0].ID != second.ID || list[0].QuestionCount != 2 {
		t.Errorf("expected newest first, got %+v", list[0])
	}

	// touching the older document moves it to the top
	status := StatusReady
	if _, err := s.Update(ctx, "u1", first.ID, Patch{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err = s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != first.ID || list[0].Status != StatusReady {
		t.Errorf("expected updated document first, got %+v", list[0])
	}
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)
	list, err := s.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}
}

func TestUpdatePartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{UserID: "u1", Subject: "Sistemas", TaskContext: "ctx", Questions: []string{"a", "b", "c"}}
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	answers := map[int]string{1: "respuesta b", 7: "fuera de rango"}
	tips := "usa ejemplos"
	got, err := s.Update(ctx, "u1", doc.ID, Patch{Answers: &answers, TaskTips: &tips})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Subject != "Sistemas" || got.TaskContext != "ctx" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.TaskTips != tips {
		t.Errorf("tips = %q", got.TaskTips)
	}
	if got.Answers[1] != "respuesta b" {
		t.Errorf("answer 1 = %q", got.Answers[1])
	}
	if _, ok := got.Answers[7]; ok {
		t.Error("answer for unknown index should be dropped")
	}

	questions := []string{"a", "b"}
	got, err = s.Update(ctx, "u1", doc.ID, Patch{Questions: &questions})
	if err != nil {
		t.Fatalf("update questions: %v", err)
	}
	if len(got.Answers) != 2 || got.Answers[1] != "respuesta b" {
		t.Errorf("expected answers trimmed to questions, got %v", got.Answers)
	}

	if _, err := s.Update(ctx, "u1", "missing", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetAnswer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{UserID: "u1", Questions: []string{"a", "b"}}
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetAnswer(ctx, "u1", doc.ID, 0, "RESPUESTA: uno"); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if err := s.SetAnswer(ctx, "u1", doc.ID, 2, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	got, err := s.Get(ctx, "u1", doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answers[0] != "RESPUESTA: uno" || got.Answers[1] != "" {
		t.Errorf("unexpected answers %v", got.Answers)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{UserID: "u1"}
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, "u1", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
