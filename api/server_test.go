package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	backend "pricing-detective/adapters/http"
	"pricing-detective/core/engine"
	"pricing-detective/core/identity"
	"pricing-detective/core/store"
)

type fakeBackend struct {
	analyzeStatus int
	analyzeBody   string
	trialStatus   int
	trialBody     string
	analyzeHits   int32
	trialHits     int32
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/analyze":
		atomic.AddInt32(&f.analyzeHits, 1)
		w.WriteHeader(f.analyzeStatus)
		fmt.Fprint(w, f.analyzeBody)
	case "/api/v1/trial-status":
		atomic.AddInt32(&f.trialHits, 1)
		w.WriteHeader(f.trialStatus)
		fmt.Fprint(w, f.trialBody)
	default:
		http.NotFound(w, r)
	}
}

func newTestServer(t *testing.T, fb *fakeBackend) *Server {
	t.Helper()
	upstream := httptest.NewServer(fb)
	t.Cleanup(upstream.Close)

	cfg := backend.DefaultConfig()
	cfg.BaseURL = upstream.URL
	ids := identity.NewProvider(identity.StaticFingerprinter("device-abc"), zap.NewNop())
	client := backend.New(cfg, ids, backend.WithLogger(zap.NewNop()))
	e := engine.New(store.New("en"), client, zap.NewNop())

	return NewServer(e, Options{Version: "test", Logger: zap.NewNop()})
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, SessionResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp SessionResponse
	if rec.Code == http.StatusOK && strings.HasPrefix(path, "/api/v1/session") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, resp
}

const okResult = `{"tool_name":"Test","overall_score":75,"verdict":"Fair","issues":[],"tiers":[],"summary":"","recommendations":["Compare plans"]}`

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	rec, _ := do(t, s, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || health.Version != "test" {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestSessionLifecycle(t *testing.T) {
	fb := &fakeBackend{
		analyzeStatus: 200, analyzeBody: okResult,
		trialStatus: 200, trialBody: `{"used":1,"remaining":2,"limit":3}`,
	}
	s := newTestServer(t, fb)

	_, resp := do(t, s, http.MethodGet, "/api/v1/session", "")
	if resp.Phase != store.PhaseIdle || resp.Result != nil || resp.Error != nil {
		t.Fatalf("unexpected initial session %+v", resp)
	}

	content := strings.Repeat("x", 60)
	_, resp = do(t, s, http.MethodPatch, "/api/v1/session", `{"content":"`+content+`","tool_name":"Test","language":"en-US"}`)
	if resp.Content != content || resp.ToolName != "Test" || resp.Language != "en" {
		t.Fatalf("patch not applied: %+v", resp)
	}

	_, resp = do(t, s, http.MethodPost, "/api/v1/session/submit", "")
	if resp.Phase != store.PhaseSuccess || resp.Result == nil || resp.Result.OverallScore != 75 {
		t.Fatalf("unexpected submit response %+v", resp)
	}
	if resp.Band != "caution" || resp.TrialStatus == nil || resp.TrialStatus.Remaining != 2 || resp.TrialExhausted {
		t.Errorf("unexpected derived fields %+v", resp)
	}
	if atomic.LoadInt32(&fb.analyzeHits) != 1 || atomic.LoadInt32(&fb.trialHits) != 1 {
		t.Errorf("analyze=%d trial=%d, want 1 and 1", atomic.LoadInt32(&fb.analyzeHits), atomic.LoadInt32(&fb.trialHits))
	}

	_, resp = do(t, s, http.MethodPost, "/api/v1/session/reset", "")
	if resp.Phase != store.PhaseIdle || resp.Content != "" || resp.Result != nil {
		t.Errorf("unexpected reset response %+v", resp)
	}
	if resp.TrialStatus == nil {
		t.Error("reset should keep the trial status")
	}
}

func TestSubmitShortContentStaysLocal(t *testing.T) {
	fb := &fakeBackend{analyzeStatus: 200, analyzeBody: okResult}
	s := newTestServer(t, fb)

	do(t, s, http.MethodPatch, "/api/v1/session", `{"content":"too short"}`)
	rec, resp := do(t, s, http.MethodPost, "/api/v1/session/submit", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Phase != store.PhaseError || resp.Error == nil || *resp.Error != engine.MinLengthMessage {
		t.Errorf("unexpected response %+v", resp)
	}
	if atomic.LoadInt32(&fb.analyzeHits) != 0 {
		t.Error("short content must not reach the backend")
	}
}

func TestSubmitPaymentRequired(t *testing.T) {
	fb := &fakeBackend{
		analyzeStatus: 402,
		analyzeBody:   `{"detail":{"error":"No tokens remaining","code":"payment_required"}}`,
	}
	s := newTestServer(t, fb)

	do(t, s, http.MethodPatch, "/api/v1/session", `{"content":"`+strings.Repeat("y", 80)+`"}`)
	_, resp := do(t, s, http.MethodPost, "/api/v1/session/submit", "")

	if resp.Error == nil || *resp.Error != "No tokens remaining" {
		t.Errorf("unexpected response %+v", resp)
	}
	if atomic.LoadInt32(&fb.trialHits) != 0 {
		t.Error("a failed analysis must not refresh the trial status")
	}
}

func TestTrialEndpoint(t *testing.T) {
	fb := &fakeBackend{trialStatus: 200, trialBody: `{"used":3,"remaining":0,"limit":3}`}
	s := newTestServer(t, fb)

	_, resp := do(t, s, http.MethodPost, "/api/v1/session/trial", "")
	if !resp.TrialExhausted || resp.TrialStatus.Used != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTrialEndpointFailure(t *testing.T) {
	fb := &fakeBackend{trialStatus: 500, trialBody: `{"detail":"boom"}`}
	s := newTestServer(t, fb)

	rec, _ := do(t, s, http.MethodPost, "/api/v1/session/trial", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "REMOTE_ERROR" || body.Error.Message != backend.TrialStatusUnavailable {
		t.Errorf("unexpected error body %+v", body)
	}
}

func TestPatchRejectsInvalidJSON(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	rec, _ := do(t, s, http.MethodPatch, "/api/v1/session", `{"content":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/session/submit", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("missing CORS headers: %v", rec.Header())
	}
}
