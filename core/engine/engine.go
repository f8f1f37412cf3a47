// Package engine provides the analysis lifecycle engine.
// The CLI and the session API are thin wrappers around this engine.
package engine

import (
	"context"

	"go.uber.org/zap"

	"pricing-detective/core/store"
	"pricing-detective/core/types"
	"pricing-detective/internal/errors"
	"pricing-detective/internal/logging"
)

// MinLengthMessage is shown when the pricing text is too short to submit
const MinLengthMessage = "minimum length not met"

// AnalysisClient is the remote analysis service
type AnalysisClient interface {
	// Analyze submits pricing text for analysis
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)

	// TrialStatus returns the remaining free quota
	TrialStatus(ctx context.Context) (*types.TrialStatus, error)
}

// Engine drives one session: it validates input, gates submissions to one
// in flight, calls the client, and writes every outcome into the store.
type Engine struct {
	store  *store.Store
	client AnalysisClient
	logger *zap.Logger
}

// New creates an engine over st and client
func New(st *store.Store, client AnalysisClient, logger *zap.Logger) *Engine {
	return &Engine{
		store:  st,
		client: client,
		logger: logging.Or(logger),
	}
}

// Store returns the session store
func (e *Engine) Store() *store.Store {
	return e.store
}

// EditContent updates the pricing text; allowed in every phase
func (e *Engine) EditContent(content string) store.Snapshot {
	return e.store.SetContent(content)
}

// EditToolName updates the tool name; allowed in every phase
func (e *Engine) EditToolName(name string) store.Snapshot {
	return e.store.SetToolName(name)
}

// EditLanguage updates the answer language; allowed in every phase
func (e *Engine) EditLanguage(tag string) store.Snapshot {
	return e.store.SetLanguage(tag)
}

// Submit runs one analysis cycle and returns the resulting snapshot.
//
// Submitting while an analysis is in flight is a no-op. Content shorter than
// the minimum fails locally without a network call. After a successful
// analysis the trial status is refreshed; that refresh can never change the
// analysis outcome.
func (e *Engine) Submit(ctx context.Context) store.Snapshot {
	// The length check and the start of the cycle are one store transaction,
	// so the request always carries the content that was checked.
	ticket, snap, ok := e.store.BeginIf(func(current store.Snapshot) string {
		if !types.MeetsMinimumLength(current.Content) {
			return MinLengthMessage
		}
		return ""
	})
	if !ok {
		if snap.Analyzing {
			e.logger.Debug("submit ignored, analysis already in flight")
		} else {
			e.logger.Debug("submit rejected",
				zap.Int("content_length", types.ContentLength(snap.Content)),
				zap.Int("min_length", types.MinContentLength))
		}
		return snap
	}

	req := types.AnalysisRequest{
		Content:  snap.Content,
		ToolName: snap.ToolName,
		Language: snap.Language,
	}
	e.logger.Debug("analysis started",
		zap.Int("content_length", types.ContentLength(req.Content)),
		zap.String("language", req.Language))

	result, err := e.client.Analyze(ctx, req)
	if err != nil {
		message := errors.UserMessage(err)
		e.logger.Info("analysis failed", zap.Error(err), zap.String("message", message))
		snap, _ = e.store.Complete(ticket, store.Failure(message))
		return snap
	}

	snap, applied := e.store.Complete(ticket, store.Success(result))
	if !applied {
		e.logger.Debug("analysis result dropped, session was reset")
		return snap
	}
	e.logger.Debug("analysis succeeded",
		zap.String("tool", result.ToolName),
		zap.Int("score", result.OverallScore),
		zap.Int("issues", len(result.Issues)))

	if err := e.refreshTrial(ctx); err != nil {
		e.logger.Warn("trial status refresh failed", zap.Error(err))
	}
	return e.store.Snapshot()
}

// refreshTrial re-reads the quota after an analysis. Its errors are
// reported as TRIAL_REFRESH_ERROR and never touch the outcome.
func (e *Engine) refreshTrial(ctx context.Context) error {
	status, err := e.client.TrialStatus(ctx)
	if err != nil {
		return errors.Wrap(errors.TypeTrialRefresh, "refresh trial status", err)
	}
	e.store.SetTrialStatus(*status)
	return nil
}

// LoadTrialStatus performs the initial quota query of a session. Failures
// are logged and returned; the analysis outcome is left alone.
func (e *Engine) LoadTrialStatus(ctx context.Context) (store.Snapshot, error) {
	status, err := e.client.TrialStatus(ctx)
	if err != nil {
		e.logger.Warn("trial status unavailable", zap.Error(err))
		return e.store.Snapshot(), err
	}
	return e.store.SetTrialStatus(*status), nil
}

// Reset returns the session to idle
func (e *Engine) Reset() store.Snapshot {
	return e.store.Reset()
}
