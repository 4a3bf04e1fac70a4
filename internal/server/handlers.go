package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Agent.Info())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.Logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	data, err := s.Agent.Image(r.Context(), imageID)
	if errors.Is(err, cache.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Image not found"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to load image", "image_id", imageID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to load image"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.Warn("Failed to write image", "image_id", imageID, "error", err)
	}
}

// handleA2A always answers 200; protocol failures travel in the JSON-RPC
// error object.
func (s *Server) handleA2A(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusOK, protocol.Failure(nil, protocol.CodeParseError, "Parse error", err.Error()))
		return
	}

	var req protocol.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, protocol.Failure(nil, protocol.CodeParseError, "Parse error", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, s.Agent.Handle(r.Context(), req))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
