package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfextract/internal/extractor"
	"github.com/go-chi/chi/v5/middleware"
)

type attemptJSON struct {
	Backend string `json:"backend"`
	Kind    string `json:"kind"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"backends": s.extractor.Backends()})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
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

	filename := sanitizeFilename(header.Filename)
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	// Backends open files by path, so spool the upload to disk.
	tmp, err := os.CreateTemp("", "pdfextract-*.pdf")
	if err != nil {
		jsonError(w, "failed to create temp file", http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	tmp.Close()
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if n > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.extractor.Extract(tmpPath)
	if err != nil {
		var all *extractor.AllBackendsFailedError
		if errors.As(err, &all) {
			s.log.Warn("extraction failed", "filename", filename, "attempts", len(all.Failures))
			attempts := make([]attemptJSON, len(all.Failures))
			for i, f := range all.Failures {
				attempts[i] = attemptJSON{Backend: f.Backend, Kind: f.Kind.String()}
				if f.Err != nil {
					attempts[i].Error = f.Err.Error()
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"error":    "no backend could extract text",
				"filename": filename,
				"attempts": attempts,
			})
			return
		}
		s.log.Error("extraction error", "filename", filename, "error", err)
		jsonError(w, "extraction failed", http.StatusInternalServerError)
		return
	}
	res.Path = filename

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = extractor.Format(w, res.Pages)
	} else {
		w.Header().Set("Content-Type", "application/json")
		err = extractor.FormatJSON(w, res)
	}
	if err != nil {
		s.log.Warn("write extract response",
			"request_id", middleware.GetReqID(r.Context()),
			"filename", filename,
			"error", err,
		)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
