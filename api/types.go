// Package api - Session API types
// These types define the JSON contract the browser view drives a session with.
package api

import (
	"pricing-detective/core/store"
	"pricing-detective/core/types"
)

// SessionResponse is the JSON form of a session snapshot
type SessionResponse struct {
	Phase          store.Phase           `json:"phase"`
	Content        string                `json:"content"`
	ToolName       string                `json:"tool_name"`
	Language       string                `json:"language"`
	Analyzing      bool                  `json:"analyzing"`
	Result         *types.AnalysisResult `json:"result"`
	Error          *string               `json:"error"`
	Band           types.ScoreBand       `json:"band,omitempty"`
	TrialStatus    *types.TrialStatus    `json:"trial_status"`
	TrialExhausted bool                  `json:"trial_exhausted"`
}

// newSessionResponse converts a snapshot. Result and error are null unless
// the session is in the matching phase.
func newSessionResponse(snap store.Snapshot) SessionResponse {
	resp := SessionResponse{
		Phase:          snap.Phase(),
		Content:        snap.Content,
		ToolName:       snap.ToolName,
		Language:       snap.Language,
		Analyzing:      snap.Analyzing,
		TrialStatus:    snap.Trial,
		TrialExhausted: snap.TrialExhausted(),
	}
	if result := snap.Result(); result != nil {
		resp.Result = result
		resp.Band = result.Band()
	}
	if message, ok := snap.Outcome.Message(); ok {
		resp.Error = &message
	}
	return resp
}

// PatchSessionRequest edits session fields; absent fields are left alone
type PatchSessionRequest struct {
	Content  *string `json:"content,omitempty"`
	ToolName *string `json:"tool_name,omitempty"`
	Language *string `json:"language,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo describes what went wrong
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}
