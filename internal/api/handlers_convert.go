package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/source"
	"github.com/go-chi/chi/v5/middleware"
)

// handleConvert loads an uploaded document as markdown and renders it.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

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
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s (supported: %s)",
			filepath.Ext(filename), strings.Join(source.Extensions(), ", ")), http.StatusBadRequest)
		return
	}
	loader, err := source.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if pdf, ok := loader.(*source.PDFLoader); ok {
		pdf.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
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

	md, err := loader.Load(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("load failed", "filename", filename, "error", err, "request_id", middleware.GetReqID(r.Context()))
		jsonError(w, "load: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	tr, err := s.newTransducer(r, md, r.FormValue("heading_break"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	out, links := s.renderMarkup(r, tr, len(md))

	jsonOK(w, map[string]any{
		"filename": filename,
		"markdown": md,
		"markup":   out,
		"links":    links,
	})
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
