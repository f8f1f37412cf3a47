package engine

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pricing-detective/core/store"
	"pricing-detective/core/types"
	"pricing-detective/internal/errors"
)

type fakeClient struct {
	mu           sync.Mutex
	analyzeCalls int
	trialCalls   int
	lastRequest  types.AnalysisRequest

	result   *types.AnalysisResult
	err      error
	trial    *types.TrialStatus
	trialErr error

	// block, when set, holds Analyze until closed
	block   chan struct{}
	started chan struct{}
}

func (f *fakeClient) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.lastRequest = req
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeClient) TrialStatus(ctx context.Context) (*types.TrialStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trialCalls++
	return f.trial, f.trialErr
}

func (f *fakeClient) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, f.trialCalls
}

func newEngine(client *fakeClient) *Engine {
	return New(store.New("en"), client, zap.NewNop())
}

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		ToolName:        "Test",
		OverallScore:    75,
		Verdict:         "Fair",
		Issues:          []types.PricingIssue{},
		Tiers:           []types.TierAnalysis{},
		Recommendations: []string{"Read the fine print"},
	}
}

func TestSubmitShortContentFailsWithoutNetwork(t *testing.T) {
	client := &fakeClient{result: sampleResult()}
	e := newEngine(client)

	e.EditContent("Too short")
	snap := e.Submit(context.Background())

	if snap.Phase() != store.PhaseError {
		t.Errorf("phase = %s, want error", snap.Phase())
	}
	if snap.Error() != MinLengthMessage {
		t.Errorf("error = %q", snap.Error())
	}
	if analyze, trial := client.calls(); analyze != 0 || trial != 0 {
		t.Errorf("expected no client calls, got analyze=%d trial=%d", analyze, trial)
	}
}

func TestSubmitCountsCharactersNotBytes(t *testing.T) {
	client := &fakeClient{result: sampleResult(), trial: &types.TrialStatus{Limit: 3}}
	e := newEngine(client)

	// 49 multi-byte characters is still too short
	e.EditContent(strings.Repeat("é", 49))
	if snap := e.Submit(context.Background()); snap.Error() != MinLengthMessage {
		t.Errorf("49 characters should be rejected, got %+v", snap)
	}

	e.EditContent(strings.Repeat("é", 50))
	if snap := e.Submit(context.Background()); snap.Phase() != store.PhaseSuccess {
		t.Errorf("50 characters should be accepted, got phase %s", snap.Phase())
	}
}

func TestSubmitSuccessRefreshesTrial(t *testing.T) {
	client := &fakeClient{
		result: sampleResult(),
		trial:  &types.TrialStatus{Used: 1, Remaining: 2, Limit: 3},
	}
	e := newEngine(client)

	e.EditContent(strings.Repeat("a", 60))
	e.EditToolName("Test")
	e.EditLanguage("en-US")
	snap := e.Submit(context.Background())

	if snap.Phase() != store.PhaseSuccess {
		t.Fatalf("phase = %s, want success", snap.Phase())
	}
	if snap.Result().OverallScore != 75 || len(snap.Result().Recommendations) != 1 {
		t.Errorf("unexpected result %+v", snap.Result())
	}
	if snap.Error() != "" {
		t.Error("success must not carry an error")
	}
	if snap.Trial == nil || snap.Trial.Remaining != 2 {
		t.Errorf("trial = %+v, want remaining 2", snap.Trial)
	}

	analyze, trial := client.calls()
	if analyze != 1 || trial != 1 {
		t.Errorf("analyze=%d trial=%d, want 1 and 1", analyze, trial)
	}
	if client.lastRequest.ToolName != "Test" || client.lastRequest.Language != "en" {
		t.Errorf("unexpected request %+v", client.lastRequest)
	}
}

func TestSubmitRemoteErrorKeepsTrialStatus(t *testing.T) {
	client := &fakeClient{
		err:   errors.Remote(402, "No tokens remaining"),
		trial: &types.TrialStatus{Used: 3, Remaining: 0, Limit: 3},
	}
	e := newEngine(client)
	e.Store().SetTrialStatus(types.TrialStatus{Used: 2, Remaining: 1, Limit: 3})

	e.EditContent(strings.Repeat("b", 80))
	snap := e.Submit(context.Background())

	if snap.Phase() != store.PhaseError || snap.Error() != "No tokens remaining" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Result() != nil {
		t.Error("failure must not carry a result")
	}
	if _, trial := client.calls(); trial != 0 {
		t.Error("trial status must not be refreshed after a failed analysis")
	}
	if snap.Trial.Remaining != 1 {
		t.Errorf("trial status changed to %+v", snap.Trial)
	}
}

func TestSubmitTransportErrorUsesGenericMessage(t *testing.T) {
	client := &fakeClient{err: errors.Transport("POST /api/v1/analyze", context.DeadlineExceeded)}
	e := newEngine(client)

	e.EditContent(strings.Repeat("c", 50))
	snap := e.Submit(context.Background())

	if snap.Error() != errors.GenericMessage {
		t.Errorf("error = %q, want %q", snap.Error(), errors.GenericMessage)
	}
}

func TestTrialRefreshFailureIsLoggedNotSurfaced(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := &fakeClient{
		result:   sampleResult(),
		trialErr: errors.Remote(503, "Failed to get trial status"),
	}
	e := New(store.New("en"), client, zap.New(core))

	e.EditContent(strings.Repeat("d", 60))
	snap := e.Submit(context.Background())

	if snap.Phase() != store.PhaseSuccess {
		t.Fatalf("phase = %s, want success", snap.Phase())
	}
	if snap.Error() != "" {
		t.Errorf("refresh failure leaked into the outcome: %q", snap.Error())
	}

	entries := logs.FilterMessage("trial status refresh failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	logged, ok := entries[0].ContextMap()["error"].(string)
	if !ok || !strings.Contains(logged, string(errors.TypeTrialRefresh)) {
		t.Errorf("logged error = %v, want %s", entries[0].ContextMap()["error"], errors.TypeTrialRefresh)
	}
}

func TestSubmitWhileInFlightIsNoOp(t *testing.T) {
	client := &fakeClient{
		result:  sampleResult(),
		trial:   &types.TrialStatus{Remaining: 1, Limit: 3},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	e := newEngine(client)
	e.EditContent(strings.Repeat("e", 60))

	done := make(chan store.Snapshot)
	go func() { done <- e.Submit(context.Background()) }()
	<-client.started

	snap := e.Submit(context.Background())
	if snap.Phase() != store.PhaseAnalyzing {
		t.Errorf("second submit phase = %s, want analyzing", snap.Phase())
	}

	close(client.block)
	if final := <-done; final.Phase() != store.PhaseSuccess {
		t.Errorf("first submit phase = %s, want success", final.Phase())
	}
	if analyze, _ := client.calls(); analyze != 1 {
		t.Errorf("analyze calls = %d, want 1", analyze)
	}
}

// lengthCheckingClient fails the test if it ever receives short content
type lengthCheckingClient struct {
	t *testing.T
}

func (c *lengthCheckingClient) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	if !types.MeetsMinimumLength(req.Content) {
		c.t.Errorf("short content reached the backend: %q", req.Content)
	}
	return sampleResult(), nil
}

func (c *lengthCheckingClient) TrialStatus(ctx context.Context) (*types.TrialStatus, error) {
	return &types.TrialStatus{Remaining: 1, Limit: 3}, nil
}

func TestConcurrentEditsNeverSendShortContent(t *testing.T) {
	client := &lengthCheckingClient{t: t}
	e := New(store.New("en"), client, zap.NewNop())
	long := strings.Repeat("p", 60)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				e.EditContent(long)
			} else {
				e.EditContent("too short")
			}
		}
	}()

	for i := 0; i < 500; i++ {
		snap := e.Submit(context.Background())
		if snap.Phase() == store.PhaseError && snap.Error() != MinLengthMessage {
			t.Fatalf("unexpected error %q", snap.Error())
		}
	}
	close(stop)
	wg.Wait()
}

func TestResetDuringAnalysisWins(t *testing.T) {
	client := &fakeClient{
		result:  sampleResult(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	e := newEngine(client)
	e.EditContent(strings.Repeat("f", 60))

	done := make(chan store.Snapshot)
	go func() { done <- e.Submit(context.Background()) }()
	<-client.started

	e.Reset()
	close(client.block)

	final := <-done
	if final.Phase() != store.PhaseIdle || final.Result() != nil {
		t.Errorf("late result overwrote reset: %+v", final)
	}
	if _, trial := client.calls(); trial != 0 {
		t.Error("an abandoned cycle must not refresh the trial status")
	}
}

func TestLoadTrialStatus(t *testing.T) {
	client := &fakeClient{trial: &types.TrialStatus{Used: 3, Remaining: 0, Limit: 3}}
	e := newEngine(client)

	snap, err := e.LoadTrialStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !snap.TrialExhausted() {
		t.Error("expected an exhausted trial")
	}

	client.trialErr = errors.Remote(500, "Failed to get trial status")
	if _, err := e.LoadTrialStatus(context.Background()); err == nil {
		t.Error("expected the load error to be returned")
	}
	if e.Store().Snapshot().Trial.Remaining != 0 {
		t.Error("a failed load must keep the last known status")
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	client := &fakeClient{result: sampleResult(), trial: &types.TrialStatus{Remaining: 2, Limit: 3}}
	e := newEngine(client)
	e.EditContent(strings.Repeat("g", 60))
	e.EditToolName("Tool")
	e.Submit(context.Background())

	snap := e.Reset()
	if snap.Phase() != store.PhaseIdle || snap.Content != "" || snap.ToolName != "" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
