package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/taskdraft/internal/segment"
	"github.com/dgallion1/taskdraft/internal/store"
	"github.com/go-chi/chi/v5"
)

type createDocumentRequest struct {
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
}

// updateDocumentRequest mirrors store.Patch. Status is owned by the
// drafting pipeline and cannot be set here.
type updateDocumentRequest struct {
	TemplateType *string         `json:"template_type"`
	Subject      *string         `json:"subject"`
	Topic        *string         `json:"topic"`
	TaskContext  *string         `json:"task_context"`
	TaskTips     *string         `json:"task_tips"`
	TaskRubric   *string         `json:"task_rubric"`
	Questions    *[]string       `json:"questions"`
	Answers      *map[int]string `json:"answers"`
	Attachments  *[]string       `json:"attachments"`
}

func (u updateDocumentRequest) patch() store.Patch {
	return store.Patch{
		TemplateType: u.TemplateType,
		Subject:      u.Subject,
		Topic:        u.Topic,
		TaskContext:  u.TaskContext,
		TaskTips:     u.TaskTips,
		TaskRubric:   u.TaskRubric,
		Questions:    u.Questions,
		Answers:      u.Answers,
		Attachments:  u.Attachments,
	}
}

// requestUser reads user_id from the query string or form.
func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = strings.TrimSpace(r.FormValue("user_id"))
	}
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

// loadDocument fetches the {docID} document for the requesting user.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	userID, ok := requestUser(w, r)
	if !ok {
		return nil, false
	}
	doc, err := s.docs.Get(r.Context(), userID, chi.URLParam(r, "docID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
	case errors.Is(err, store.ErrIndexOutOfRange):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Error("document store failed", "error", err)
		jsonError(w, "document store failed", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if req.UserID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Questions) == 0 {
		jsonError(w, "at least one question is required", http.StatusBadRequest)
		return
	}

	doc := &store.Document{
		UserID:       req.UserID,
		TemplateType: req.TemplateType,
		Subject:      req.Subject,
		Topic:        req.Topic,
		SourceText:   req.SourceText,
		TaskContext:  req.TaskContext,
		TaskTips:     req.TaskTips,
		TaskRubric:   req.TaskRubric,
		Questions:    req.Questions,
		Answers:      req.Answers,
		Attachments:  req.Attachments,
	}
	if err := s.docs.Create(r.Context(), doc); err != nil {
		s.storeError(w, err)
		return
	}
	s.log.Info("document created", "doc_id", doc.ID, "user_id", doc.UserID, "questions", len(doc.Questions))
	writeJSON(w, http.StatusCreated, doc)
}

// handleListDocuments lists all documents for a user, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	docs, err := s.docs.List(r.Context(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req updateDocumentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Questions != nil && len(*req.Questions) == 0 {
		jsonError(w, "at least one question is required", http.StatusBadRequest)
		return
	}
	doc, err := s.docs.Update(r.Context(), userID, chi.URLParam(r, "docID"), req.patch())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument deletes a document and its answers.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")
	if err := s.docs.Delete(r.Context(), userID, docID); err != nil {
		s.storeError(w, err)
		return
	}
	s.log.Info("document deleted", "doc_id", docID, "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

// handleGroups previews how the export will bucket questions by RA code.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id": doc.ID,
		"groups": segment.GroupByCode(doc.Questions, doc.Answers),
	})
}
