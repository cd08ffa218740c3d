package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/taskdraft/internal/export"
)

type exportRequest struct {
	export.Options

	// Filename overrides the download name. MetaFilename builds it from the
	// cover fields instead.
	Filename     string `json:"filename"`
	MetaFilename bool   `json:"meta_filename"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	var req exportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, doc, req.Options); err != nil {
		s.log.Error("export failed", "doc_id", doc.ID, "user_id", doc.UserID, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := export.Filename(time.Now())
	switch {
	case strings.TrimSpace(req.Filename) != "":
		name = export.SanitizeFilename(req.Filename)
	case req.MetaFilename:
		opts := req.Options
		if opts.Subject == "" {
			opts.Subject = doc.Subject
		}
		if opts.Topic == "" {
			opts.Topic = doc.Topic
		}
		name = export.MetaFilename(opts)
	}

	s.log.Info("document exported", "doc_id", doc.ID, "user_id", doc.UserID, "filename", name, "bytes", buf.Len())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
