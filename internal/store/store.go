// Package store persists task documents in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a document does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("document not found")

	// ErrIndexOutOfRange is returned by SetAnswer for an unknown question.
	ErrIndexOutOfRange = errors.New("question index out of range")
)

const (
	StatusDraft    = "draft"
	StatusDrafting = "drafting"
	StatusReady    = "ready"

	DefaultTemplate = "FOC"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	template_type    TEXT NOT NULL DEFAULT 'FOC',
	subject          TEXT NOT NULL DEFAULT '',
	topic            TEXT NOT NULL DEFAULT '',
	source_text      TEXT NOT NULL DEFAULT '',
	task_context     TEXT NOT NULL DEFAULT '',
	task_tips        TEXT NOT NULL DEFAULT '',
	task_rubric      TEXT NOT NULL DEFAULT '',
	questions_json   TEXT NOT NULL DEFAULT '[]',
	answers_json     TEXT NOT NULL DEFAULT '{}',
	attachments_json TEXT NOT NULL DEFAULT '[]',
	status           TEXT NOT NULL DEFAULT 'draft',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_user_updated ON documents (user_id, updated_at DESC);
`

// Document is one uploaded task with its questions and drafted answers.
type Document struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	TemplateType string         `json:"template_type"`
	Subject      string         `json:"subject"`
	Topic        string         `json:"topic"`
	SourceText   string         `json:"source_text"`
	TaskContext  string         `json:"task_context"`
	TaskTips     string         `json:"task_tips"`
	TaskRubric   string         `json:"task_rubric"`
	Questions    []string       `json:"questions"`
	Answers      map[int]string `json:"answers"`
	Attachments  []string       `json:"attachments"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Summary is the list view of a document.
type Summary struct {
	ID            string    `json:"id"`
	TemplateType  string    `json:"template_type"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	TemplateType *string
	Subject      *string
	Topic        *string
	TaskContext  *string
	TaskTips     *string
	TaskRubric   *string
	Questions    *[]string
	Answers      *map[int]string
	Attachments  *[]string
	Status       *string
}

// Store is a SQLite-backed document repository.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Create inserts doc, assigning its ID and timestamps. Every question
// starts with an empty answer; a missing template or status gets its
// default.
func (s *Store) Create(ctx context.Context, doc *Document) error {
	if doc.UserID == "" {
		return fmt.Errorf("create document: user id is required")
	}
	doc.ID = uuid.NewString()
	now := s.now().UTC().Truncate(time.Millisecond)
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.TemplateType == "" {
		doc.TemplateType = DefaultTemplate
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Questions == nil {
		doc.Questions = []string{}
	}
	if doc.Attachments == nil {
		doc.Attachments = []string{}
	}
	answers := make(map[int]string, len(doc.Questions))
	for i := range doc.Questions {
		answers[i] = doc.Answers[i]
	}
	doc.Answers = answers

	questions, answersJSON, attachments, err := encodeLists(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, template_type, subject, topic, source_text,
			task_context, task_tips, task_rubric, questions_json, answers_json,
			attachments_json, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.TemplateType, doc.Subject, doc.Topic, doc.SourceText,
		doc.TaskContext, doc.TaskTips, doc.TaskRubric, questions, answersJSON,
		attachments, doc.Status, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

const selectDocument = `
	SELECT id, user_id, template_type, subject, topic, source_text, task_context,
		task_tips, task_rubric, questions_json, answers_json, attachments_json,
		status, created_at, updated_at
	FROM documents`

// Get returns the document owned by userID.
func (s *Store) Get(ctx context.Context, userID, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocument+` WHERE id = ? AND user_id = ?`, id, userID)
	return scanDocument(row)
}

// List returns summaries of userID's documents, most recently updated first.
func (s *Store) List(ctx context.Context, userID string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_type, subject, topic, status, questions_json, created_at, updated_at
		FROM documents WHERE user_id = ? ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum                  Summary
			questions            string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&sum.ID, &sum.TemplateType, &sum.Subject, &sum.Topic, &sum.Status,
			&questions, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var qs []string
		if err := json.Unmarshal([]byte(questions), &qs); err != nil {
			return nil, fmt.Errorf("decode questions of %s: %w", sum.ID, err)
		}
		sum.QuestionCount = len(qs)
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		sum.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Update applies p to the document and returns the stored result. Replacing
// the questions keeps answers whose index still exists.
func (s *Store) Update(ctx context.Context, userID, id string, p Patch) (*Document, error) {
	var updated *Document
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		doc, err := scanDocument(tx.QueryRowContext(ctx, selectDocument+` WHERE id = ? AND user_id = ?`, id, userID))
		if err != nil {
			return err
		}
		applyPatch(doc, p)
		if err := s.save(ctx, tx, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	return updated, err
}

// SetAnswer stores the answer of one question.
func (s *Store) SetAnswer(ctx context.Context, userID, id string, index int, answer string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		doc, err := scanDocument(tx.QueryRowContext(ctx, selectDocument+` WHERE id = ? AND user_id = ?`, id, userID))
		if err != nil {
			return err
		}
		if index < 0 || index >= len(doc.Questions) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		doc.Answers[index] = answer
		return s.save(ctx, tx, doc)
	})
}

// Delete removes the document owned by userID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func applyPatch(doc *Document, p Patch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&doc.TemplateType, p.TemplateType)
	set(&doc.Subject, p.Subject)
	set(&doc.Topic, p.Topic)
	set(&doc.TaskContext, p.TaskContext)
	set(&doc.TaskTips, p.TaskTips)
	set(&doc.TaskRubric, p.TaskRubric)
	set(&doc.Status, p.Status)

	if p.Questions != nil {
		doc.Questions = append([]string{}, (*p.Questions)...)
	}
	if p.Answers != nil {
		for i, a := range *p.Answers {
			doc.Answers[i] = a
		}
	}
	if p.Attachments != nil {
		doc.Attachments = append([]string{}, (*p.Attachments)...)
	}

	// answers are keyed by question index
	answers := make(map[int]string, len(doc.Questions))
	for i := range doc.Questions {
		answers[i] = doc.Answers[i]
	}
	doc.Answers = answers
}

func (s *Store) save(ctx context.Context, tx *sql.Tx, doc *Document) error {
	questions, answers, attachments, err := encodeLists(doc)
	if err != nil {
		return err
	}
	doc.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET template_type = ?, subject = ?, topic = ?, task_context = ?,
			task_tips = ?, task_rubric = ?, questions_json = ?, answers_json = ?,
			attachments_json = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		doc.TemplateType, doc.Subject, doc.Topic, doc.TaskContext, doc.TaskTips, doc.TaskRubric,
		questions, answers, attachments, doc.Status, doc.UpdatedAt.UnixMilli(), doc.ID, doc.UserID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc                             Document
		questions, answers, attachments string
		createdAt, updatedAt            int64
	)
	err := row.Scan(&doc.ID, &doc.UserID, &doc.TemplateType, &doc.Subject, &doc.Topic,
		&doc.SourceText, &doc.TaskContext, &doc.TaskTips, &doc.TaskRubric,
		&questions, &answers, &attachments, &doc.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal([]byte(questions), &doc.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &doc.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &doc.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	if doc.Questions == nil {
		doc.Questions = []string{}
	}
	if doc.Answers == nil {
		doc.Answers = map[int]string{}
	}
	if doc.Attachments == nil {
		doc.Attachments = []string{}
	}
	doc.CreatedAt = time.UnixMilli(createdAt).UTC()
	doc.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &doc, nil
}

func encodeLists(doc *Document) (questions, answers, attachments string, err error) {
	q, err := json.Marshal(doc.Questions)
	if err != nil {
		return "", "", "", fmt.Errorf("encode questions: %w", err)
	}
	a, err := json.Marshal(doc.Answers)
	if err != nil {
		return "", "", "", fmt.Errorf("encode answers: %w", err)
	}
	at, err := json.Marshal(doc.Attachments)
	if err != nil {
		return "", "", "", fmt.Errorf("encode attachments: %w", err)
	}
	return string(q), string(a), string(at), nil
}
