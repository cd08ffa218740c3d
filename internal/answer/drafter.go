// Package answer drafts answers for task questions with an LLM.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/taskdraft/internal/llm"
	"github.com/dgallion1/taskdraft/internal/store"
)

// ErrNoQuestion is returned for an index outside the document's questions.
var ErrNoQuestion = errors.New("no question at index")

// Options tunes the drafting requests.
type Options struct {
	MaxTokens      int
	MaxBatchTokens int // ceiling for a whole batch request
	Temperature    float64
	Delay          time.Duration // pause between serial requests
	MaxSourceChars int
}

// DefaultMaxBatchTokens fits the output limit of every supported provider.
const DefaultMaxBatchTokens = 8192

func DefaultOptions() Options {
	return Options{
		MaxTokens:      2000,
		MaxBatchTokens: DefaultMaxBatchTokens,
		Temperature:    0.5,
		Delay:          1500 * time.Millisecond,
		MaxSourceChars: DefaultMaxSourceChars,
	}
}

// Draft is the outcome of drafting one question.
type Draft struct {
	Index            int    `json:"index"`
	Answer           string `json:"answer"`
	Provider         string `json:"provider,omitempty"`
	Model            string `json:"model,omitempty"`
	GeneralKnowledge bool   `json:"general_knowledge"`
	Err              error  `json:"-"`
}

// Drafter turns questions into answers using an llm.Provider.
type Drafter struct {
	llm  llm.Provider
	opts Options
	log  *slog.Logger
	wait func(ctx context.Context, d time.Duration) error
}

func NewDrafter(p llm.Provider, opts Options, log *slog.Logger) *Drafter {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.MaxBatchTokens <= 0 {
		opts.MaxBatchTokens = DefaultMaxBatchTokens
	}
	if opts.MaxSourceChars <= 0 {
		opts.MaxSourceChars = DefaultMaxSourceChars
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Drafter{llm: p, opts: opts, log: log, wait: sleep}
}

// Answer drafts the question at index.
func (d *Drafter) Answer(ctx context.Context, doc *store.Document, index int) (Draft, error) {
	draft := Draft{Index: index}
	if index < 0 || index >= len(doc.Questions) {
		return draft, fmt.Errorf("%w %d", ErrNoQuestion, index)
	}
	question := strings.TrimSpace(doc.Questions[index])
	if question == "" {
		return draft, fmt.Errorf("question %d is empty", index)
	}

	prompt := BuildPrompt(question, docContext(doc), doc.SourceText, d.opts.MaxSourceChars)
	resp, err := d.llm.Generate(ctx, llm.Request{
		System:      SystemPrompt,
		Messages:    llm.UserText(prompt),
		MaxTokens:   d.opts.MaxTokens,
		Temperature: d.opts.Temperature,
	})
	if err != nil {
		return draft, fmt.Errorf("draft question %d: %w", index, err)
	}
	if resp.StopReason == "max_tokens" {
		d.log.Warn("answer truncated", "doc_id", doc.ID, "index", index, "provider", resp.Provider)
	}
	return finishDraft(index, resp.Text, resp.Provider, resp.Model)
}

// Pending lists the question indexes to draft. With onlyMissing, questions
// whose answer is already long enough are skipped.
func Pending(doc *store.Document, onlyMissing bool) []int {
	out := make([]int, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if onlyMissing && !NeedsAnswer(doc.Answers[i]) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// AnswerAll drafts the pending questions one at a time, pausing between
// requests. fn receives every draft, including failed ones with Err set.
// Only a cancelled context stops the run early.
func (d *Drafter) AnswerAll(ctx context.Context, doc *store.Document, onlyMissing bool, fn func(Draft)) error {
	for n, i := range Pending(doc, onlyMissing) {
		if n > 0 {
			if err := d.wait(ctx, d.opts.Delay); err != nil {
				return err
			}
		}
		draft, err := d.Answer(ctx, doc, i)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.log.Warn("draft failed", "doc_id", doc.ID, "index", i, "error", err)
			draft.Err = err
		}
		fn(draft)
	}
	return nil
}

var batchSchema = &llm.Schema{
	Name: "batch-answers",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"answers"},
		"properties": map[string]any{
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"index", "answer"},
					"properties": map[string]any{
						"index":  map[string]any{"type": "integer", "minimum": 0},
						"answer": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

type batchResponse struct {
	Answers []struct {
		Index  int    `json:"index"`
		Answer string `json:"answer"`
	} `json:"answers"`
}

// AnswerBatch drafts every pending question with a single structured
// request. Questions the model skipped are reported with Err set; an error
// is returned only when the request itself fails.
func (d *Drafter) AnswerBatch(ctx context.Context, doc *store.Document, onlyMissing bool, fn func(Draft)) error {
	indexes := Pending(doc, onlyMissing)
	if len(indexes) == 0 {
		return nil
	}
	questions := make(map[int]string, len(indexes))
	for _, i := range indexes {
		questions[i] = doc.Questions[i]
	}

	prompt := BuildBatchPrompt(questions, indexes, docContext(doc), doc.SourceText, d.opts.MaxSourceChars)
	resp, err := d.llm.Generate(ctx, llm.Request{
		System:      SystemPrompt,
		Messages:    llm.UserText(prompt),
		Schema:      batchSchema,
		MaxTokens:   min(d.opts.MaxTokens*len(indexes), d.opts.MaxBatchTokens),
		Temperature: d.opts.Temperature,
	})
	if err != nil {
		return fmt.Errorf("draft batch: %w", err)
	}

	var out batchResponse
	if err := resp.Decode(&out); err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}

	got := make(map[int]string, len(out.Answers))
	for _, a := range out.Answers {
		if _, wanted := questions[a.Index]; wanted {
			got[a.Index] = a.Answer
		}
	}
	for _, i := range indexes {
		text, ok := got[i]
		if !ok {
			fn(Draft{Index: i, Err: fmt.Errorf("question %d: %w", i, ErrEmptyAnswer)})
			continue
		}
		draft, err := finishDraft(i, text, resp.Provider, resp.Model)
		if err != nil {
			d.log.Warn("batch answer rejected", "doc_id", doc.ID, "index", i, "error", err)
			draft.Err = err
		}
		fn(draft)
	}
	return nil
}

func finishDraft(index int, text, provider, model string) (Draft, error) {
	draft := Draft{Index: index, Provider: provider, Model: model}
	if err := ValidateDraft(text); err != nil {
		return draft, fmt.Errorf("question %d: %w", index, err)
	}
	html, err := Normalize(text)
	if err != nil {
		return draft, fmt.Errorf("question %d: normalize: %w", index, err)
	}
	draft.Answer = html
	draft.GeneralKnowledge = FromGeneralKnowledge(text)
	return draft, nil
}

func docContext(doc *store.Document) string {
	return TaskContext(doc.TaskContext, doc.TaskTips, doc.TaskRubric)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
