package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/taskdraft/internal/answer"
	"github.com/dgallion1/taskdraft/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type setAnswerRequest struct {
	Answer string `json:"answer"`
}

type draftRequest struct {
	Mode        string `json:"mode"`
	OnlyMissing bool   `json:"only_missing"`
}

func questionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		jsonError(w, "index must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// handleDraftAnswer drafts one question synchronously and stores the result.
func (s *Server) handleDraftAnswer(w http.ResponseWriter, r *http.Request) {
	index, ok := questionIndex(w, r)
	if !ok {
		return
	}
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	log := s.log.With("doc_id", doc.ID, "user_id", doc.UserID, "index", index)

	draft, err := s.drafter.Answer(r.Context(), doc, index)
	if err != nil {
		switch {
		case errors.Is(err, answer.ErrNoQuestion):
			jsonError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, answer.ErrEmptyAnswer), errors.Is(err, answer.ErrPromptEcho):
			log.Warn("draft rejected", "error", err)
			jsonError(w, err.Error(), http.StatusBadGateway)
		default:
			log.Error("draft failed", "error", err)
			jsonError(w, "drafting failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	if err := s.docs.SetAnswer(r.Context(), doc.UserID, doc.ID, index, draft.Answer); err != nil {
		s.storeError(w, err)
		return
	}
	log.Info("answer drafted", "provider", draft.Provider, "general_knowledge", draft.GeneralKnowledge)
	writeJSON(w, http.StatusOK, draft)
}

// handleSetAnswer stores an answer edited by the user.
func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	index, ok := questionIndex(w, r)
	if !ok {
		return
	}
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req setAnswerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	docID := chi.URLParam(r, "docID")
	if err := s.docs.SetAnswer(r.Context(), userID, docID, index, req.Answer); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": index, "answer": req.Answer})
}

// handleDraftAll queues a job that drafts every pending question.
func (s *Server) handleDraftAll(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	mode, ok := pipeline.ParseMode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if !ok {
		jsonError(w, fmt.Sprintf("unknown mode %q (want serial or batch)", req.Mode), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(doc.ID, doc.UserID, mode, req.OnlyMissing)
	if err := s.jobs.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrJobActive) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"mode":     snap.Mode,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if u := r.URL.Query().Get("user_id"); u != "" && u != snap.UserID {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
