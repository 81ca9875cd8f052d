package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"codemorph/internal/gateway/repository/artifact"
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/gateway/service/morph"
)

// MaxUploadBytes bounds an uploaded source file.
const MaxUploadBytes = 1 << 20

type FileHandler struct {
	svc *morph.Service
	log zerolog.Logger
}

func NewFileHandler(svc *morph.Service, logger zerolog.Logger) *FileHandler {
	return &FileHandler{svc: svc, log: logger}
}

// HandleUpload replaces a session's input with the multipart field "file".
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "multipart field \"file\" is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if len(content) > MaxUploadBytes {
		http.Error(w, fmt.Sprintf("file exceeds %d bytes", MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	sess, err := h.svc.Upload(r.Context(), sessionID, header.Filename, content)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.log.Debug().Str("session_id", sessionID).Str("filename", header.Filename).Int("bytes", len(content)).Msg("upload accepted")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"session": sess})
}

// HandleDownload sends the session output as an attachment.
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	name, content, err := h.svc.Download(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = io.WriteString(w, content)
}

// HandleExport serves one stored export as an attachment. It works for every
// artifact backend, including the in-memory store that has no URLs.
func (h *FileHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	sessionID := strings.TrimSpace(q.Get("session_id"))
	object := strings.TrimSpace(q.Get("name"))
	if sessionID == "" || object == "" {
		http.Error(w, "session_id and name are required", http.StatusBadRequest)
		return
	}
	name, content, err := h.svc.OpenExport(r.Context(), sessionID, object)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(content)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, artifact.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, artifact.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, morph.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
