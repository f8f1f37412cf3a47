package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	backend "pricing-detective/adapters/http"
	"pricing-detective/internal/errors"
)

// maxPatchBytes caps a PATCH body; pricing pages are text, not uploads
const maxPatchBytes = 1 << 20

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleGetSession handles GET /api/v1/session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, newSessionResponse(s.engine.Store().Snapshot()), http.StatusOK)
}

// handlePatchSession handles PATCH /api/v1/session
func (s *Server) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	var req PatchSessionRequest
	body := io.LimitReader(r.Body, maxPatchBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	snap := s.engine.Store().Snapshot()
	if req.Content != nil {
		snap = s.engine.EditContent(*req.Content)
	}
	if req.ToolName != nil {
		snap = s.engine.EditToolName(*req.ToolName)
	}
	if req.Language != nil {
		snap = s.engine.EditLanguage(*req.Language)
	}
	s.writeJSON(w, newSessionResponse(snap), http.StatusOK)
}

// handleSubmit handles POST /api/v1/session/submit. The response is the
// snapshot after the cycle; outcome errors are part of the snapshot, not
// of the HTTP status.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Submit(r.Context())
	s.writeJSON(w, newSessionResponse(snap), http.StatusOK)
}

// handleReset handles POST /api/v1/session/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, newSessionResponse(s.engine.Reset()), http.StatusOK)
}

// handleTrial handles POST /api/v1/session/trial
func (s *Server) handleTrial(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.LoadTrialStatus(r.Context())
	if err != nil {
		code := errors.TypeInternal
		if e, ok := errors.As(err); ok {
			code = e.Type
		}
		s.logger.Debug("trial status request failed", zap.Error(err))
		s.writeError(w, string(code), trialMessage(err), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, newSessionResponse(snap), http.StatusOK)
}

// trialMessage keeps the backend's trial message and hides everything else
func trialMessage(err error) string {
	if errors.IsType(err, errors.TypeRemote) {
		return errors.UserMessage(err)
	}
	return backend.TrialStatusUnavailable
}
