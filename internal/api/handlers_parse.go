package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/taskdraft/internal/parser"
	"github.com/dgallion1/taskdraft/internal/segment"
)

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Filename     string   `json:"filename,omitempty"`
	Text         string   `json:"text"`
	Truncated    bool     `json:"truncated"`
	Questions    []string `json:"questions"`
	Structured   bool     `json:"structured"`
	DroppedLines int      `json:"dropped_lines"`
}

// handleParse turns a pasted statement or an uploaded file into questions.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var text, filename string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// Limit total request size.
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename = sanitizeFilename(header.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		text, err = parser.Extract(r.Context(), bytes.NewReader(data), filename, s.parser)
		if err != nil {
			s.log.Warn("extract failed", "filename", filename, "error", err)
			code := http.StatusUnprocessableEntity
			if errors.Is(err, parser.ErrUnsupportedFormat) {
				code = http.StatusBadRequest
			}
			jsonError(w, "could not read file: "+err.Error(), code)
			return
		}
		if text == "" {
			jsonError(w, "no text found in file", http.StatusUnprocessableEntity)
			return
		}
	} else {
		var req parseRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		text = parser.Normalize(req.Text)
		if utf8.RuneCountInString(text) < s.cfg.MinTextChars {
			jsonError(w, fmt.Sprintf("text too short (minimum %d characters)", s.cfg.MinTextChars), http.StatusBadRequest)
			return
		}
	}

	// Questions come from the full text; only the echoed text is clipped.
	resp := parseResponse{Filename: filename}
	resp.Text, resp.Truncated = clipRunes(text, s.cfg.MaxTextChars)

	seg := segment.Analyze(text)
	resp.Structured = seg.Structured()
	resp.DroppedLines = seg.Dropped
	resp.Questions = seg.Questions
	if !resp.Structured {
		// No headers: the whole statement becomes a single question.
		resp.Questions = []string{resp.Text}
		resp.DroppedLines = 0
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeJSON reads a JSON body into v and reports failures to the client.
// An empty body leaves v untouched.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
	return false
}

func clipRunes(s string, n int) (string, bool) {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	return string([]rune(s)[:n]), true
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
