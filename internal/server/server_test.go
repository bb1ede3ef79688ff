package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/internal/engine"
	"github.com/leapstack-labs/needscheck/internal/state"
	"github.com/leapstack-labs/needscheck/internal/testutil"
)

const (
	cleanDoc    = `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_1", "type": "req", "status": "open"}}}}}`
	mismatchDoc = `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_2", "type": "req", "status": "open"}}}}}`
	countDoc    = `{"versions": {"v1": {"needs_amount": 5, "needs": {"A": {}, "B": {}, "C": {}}}}}`
)

type testServer struct {
	*Server
	http  *httptest.Server
	store *state.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	logger := testutil.NewTestLogger(t)

	store, err := state.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	eng, err := engine.New(engine.Config{Recorder: store, Logger: logger})
	require.NoError(t, err)

	s := New(Config{Engine: eng, Store: store, Logger: logger})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: s, http: ts, store: store}
}

type validateResponse struct {
	RunID    string `json:"run_id"`
	Verdict  string `json:"verdict"`
	Failed   bool   `json:"failed"`
	Strict   bool   `json:"strict"`
	Source   string `json:"source"`
	Errors   []struct {
		Rule     string   `json:"rule"`
		Severity string   `json:"severity"`
		Message  string   `json:"message"`
		Path     []string `json:"path"`
	} `json:"errors"`
	Warnings []struct {
		Rule     string `json:"rule"`
		Severity string `json:"severity"`
	} `json:"warnings"`
}

func postValidate(t *testing.T, ts *testServer, query, contentType, body string) (*http.Response, validateResponse) {
	t.Helper()
	resp, err := http.Post(ts.http.URL+"/v1/validate"+query, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out validateResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestValidateEndpoint(t *testing.T) {
	ts := setupServer(t)

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		verdict     string
		failed      bool
		errors      []string
		warnings    []string
	}{
		{name: "clean", contentType: "application/json", body: cleanDoc, verdict: "PASS"},
		{name: "id mismatch", contentType: "application/json", body: mismatchDoc, verdict: "FAIL", failed: true, errors: []string{"ND01"}},
		{name: "warnings", contentType: "application/json", body: countDoc, verdict: "PASS_WITH_WARNINGS", warnings: []string{"VR01"}},
		{name: "warnings strict", query: "?strict=true", contentType: "application/json", body: countDoc, verdict: "PASS_WITH_WARNINGS", failed: true, warnings: []string{"VR01"}},
		{name: "yaml body", contentType: "application/yaml; charset=utf-8", body: "versions:\n  v1:\n    needs: {}\n", verdict: "PASS"},
		{name: "malformed", contentType: "application/json", body: `{"versions":`, verdict: "FAIL", failed: true, errors: []string{engine.RuleLoad}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postValidate(t, ts, tt.query, tt.contentType, tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.verdict, out.Verdict)
			assert.Equal(t, tt.failed, out.Failed)

			var errs, warns []string
			for _, e := range out.Errors {
				errs = append(errs, e.Rule)
				assert.Equal(t, "error", e.Severity)
			}
			for _, w := range out.Warnings {
				warns = append(warns, w.Rule)
				assert.Equal(t, "warning", w.Severity)
			}
			assert.Equal(t, tt.errors, errs)
			assert.Equal(t, tt.warnings, warns)
		})
	}
}

func TestValidateEndpoint_FindingPath(t *testing.T) {
	ts := setupServer(t)
	_, out := postValidate(t, ts, "?source=upload.json", "application/json", mismatchDoc)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "upload.json", out.Source)
	assert.Equal(t, []string{"versions", "v1", "needs", "REQ_1", "id"}, out.Errors[0].Path)
	assert.Equal(t, "Need ID mismatch: key='REQ_1', id='REQ_2'", out.Errors[0].Message)
}

func TestValidateEndpoint_BadRequests(t *testing.T) {
	ts := setupServer(t)

	resp, _ := postValidate(t, ts, "?strict=maybe", "application/json", cleanDoc)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	small := New(Config{Engine: ts.engine, MaxBodyBytes: 8})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(cleanDoc))
	small.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/validate", nil)
	small.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRulesEndpoint(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.http.URL + "/v1/rules")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Rules []struct {
			ID              string `json:"id"`
			DefaultSeverity string `json:"default_severity"`
		} `json:"rules"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 10, out.Count)
	assert.Equal(t, "VR01", out.Rules[0].ID)
	assert.Equal(t, "warning", out.Rules[0].DefaultSeverity)
}

func TestHealthz(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.http.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "bundled:sphinx-needs", out["schema"])
}

func TestHealthz_Degraded(t *testing.T) {
	eng, err := engine.New(engine.Config{SchemaPath: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)
	s := New(Config{Engine: eng})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestMetrics(t *testing.T) {
	ts := setupServer(t)
	postValidate(t, ts, "", "application/json", mismatchDoc)
	postValidate(t, ts, "", "application/json", cleanDoc)

	resp, err := http.Get(ts.http.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `needscheck_validations_total{verdict="FAIL"} 1`)
	assert.Contains(t, text, `needscheck_validations_total{verdict="PASS"} 1`)
	assert.Contains(t, text, `needscheck_findings_total{rule="ND01",severity="error"} 1`)
	assert.Contains(t, text, "needscheck_validation_duration_seconds_count 2")
}

func TestRunsEndpoints(t *testing.T) {
	ts := setupServer(t)
	_, out := postValidate(t, ts, "?source=a.json", "application/json", mismatchDoc)

	resp, err := http.Get(ts.http.URL + "/v1/runs?limit=5")
	require.NoError(t, err)
	var list struct {
		Runs []struct {
			ID      string `json:"id"`
			Source  string `json:"source"`
			Verdict string `json:"verdict"`
		} `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	_ = resp.Body.Close()
	require.Len(t, list.Runs, 1)
	assert.Equal(t, out.RunID, list.Runs[0].ID)
	assert.Equal(t, "a.json", list.Runs[0].Source)

	resp, err = http.Get(ts.http.URL + "/v1/runs/" + out.RunID)
	require.NoError(t, err)
	var run struct {
		Findings []struct {
			Rule string `json:"rule"`
			Path string `json:"path"`
		} `json:"findings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	_ = resp.Body.Close()
	require.Len(t, run.Findings, 1)
	assert.Equal(t, "ND01", run.Findings[0].Rule)
	assert.Equal(t, "versions -> v1 -> needs -> REQ_1 -> id", run.Findings[0].Path)

	resp, err = http.Get(ts.http.URL + "/v1/runs/unknown")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.http.URL + "/v1/runs?limit=x")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunsEndpoints_WithoutStore(t *testing.T) {
	eng, err := engine.New(engine.Config{})
	require.NoError(t, err)
	s := New(Config{Engine: eng})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsStream(t *testing.T) {
	ts := setupServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.http.URL+"/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return ts.notifier.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	postValidate(t, ts, "?source=evt.json", "application/json", countDoc)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: validation\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
	assert.Equal(t, "evt.json", ev.Source)
	assert.Equal(t, "PASS_WITH_WARNINGS", string(ev.Verdict))
	assert.Equal(t, 1, ev.Warnings)
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	eng, err := engine.New(engine.Config{})
	require.NoError(t, err)
	s := New(Config{Engine: eng, Logger: testutil.NewTestLogger(t)})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
