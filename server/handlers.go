package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tlum/assistant-backend/completion"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	var body errorBody
	body.Error.Message = message
	switch status {
	case http.StatusUnauthorized:
		body.Error.Type = "authentication_error"
	case http.StatusBadRequest:
		body.Error.Type = "invalid_request_error"
	default:
		body.Error.Type = "server_error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleCompletions decodes one request, runs it through the orchestrator,
// and encodes the result either as a single JSON envelope or as SSE chunks.
func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	var req completion.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	result, err := s.orchestrator.Complete(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, completion.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("completion.failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "completion failed")
		}
		return
	}

	if result.Streamed {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		chunks := completion.Chunks(result.Envelope, s.chunkSize)
		if err := completion.WriteSSE(w, chunks); err != nil {
			s.logger.Warn("completion.stream_aborted", "error", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result.Envelope)
}
