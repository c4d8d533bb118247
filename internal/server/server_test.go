package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpulse/adpulse/internal/agent"
	"github.com/adpulse/adpulse/internal/dataquery"
	"github.com/adpulse/adpulse/internal/llm"
	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// echoModule returns its parameters so handler tests can see what ran.
type echoModule struct{}

func (echoModule) Metadata() modules.Metadata {
	return modules.Metadata{
		ID: "echo", Name: "Echo", Category: "performance",
		Description: "Returns its own parameters.", Version: "1.0.0", Priority: 10,
	}
}

func (echoModule) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled: true, TimeoutSeconds: 5,
		Params: map[string]any{"days": 7},
	}
}

func (echoModule) ValidateConfig(modules.Config) error { return nil }

func (echoModule) Analyze(_ context.Context, cfg modules.Config) (map[string]any, error) {
	return map[string]any{"params": cfg.Params}, nil
}

func (echoModule) FormatResults(d map[string]any) map[string]any { return d }
func (echoModule) PrepareCharts(map[string]any) []modules.Chart  { return nil }
func (echoModule) Recommendations(map[string]any) []string       { return nil }
func (echoModule) Alerts(map[string]any) []modules.Alert         { return nil }

// alertingModule is an echoModule that also describes its alert thresholds.
type alertingModule struct{ echoModule }

func (alertingModule) Metadata() modules.Metadata {
	return modules.Metadata{
		ID: "alerting", Name: "Alerting", Category: "performance",
		Description: "Carries severity thresholds.", Version: "1.0.0", Priority: 5,
	}
}

func (alertingModule) SeverityMetadata() map[string]modules.SeveritySpec {
	return map[string]modules.SeveritySpec{
		"echo_alert": {
			Label:      "Echo level",
			Thresholds: map[string]float64{"warning": 10, "critical": 100},
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := modules.NewRegistry()
	require.NoError(t, reg.Register(echoModule{}))
	require.NoError(t, reg.Register(alertingModule{}))

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := modules.NewService(reg, modules.NewEngine(nil), nil)
	catalog := agent.NewCatalog(reg)
	orch := agent.NewOrchestrator(catalog, svc, dataquery.NewService(st, nil),
		llm.Config{Provider: llm.ProviderOpenAI, Model: "test", APIKey: "test"}, nil)

	return New(0, svc, catalog, orch, nil)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleListModules(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Modules []struct {
			ID       string                          `json:"id"`
			Config   modules.Config                  `json:"config"`
			Severity map[string]modules.SeveritySpec `json:"severity"`
		} `json:"modules"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Modules, 2)

	// Higher priority first.
	assert.Equal(t, "echo", body.Modules[0].ID)
	assert.Equal(t, 5, body.Modules[0].Config.TimeoutSeconds)
	assert.Nil(t, body.Modules[0].Severity, "module without thresholds must omit severity")

	assert.Equal(t, "alerting", body.Modules[1].ID)
	require.Contains(t, body.Modules[1].Severity, "echo_alert")
	assert.Equal(t, 100.0, body.Modules[1].Severity["echo_alert"].Thresholds["critical"])

	assert.Equal(t, []string{"performance"}, body.Categories)
}

func TestHandleListModules_UnknownCategoryIsEmpty(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/modules?category=nope", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Modules []any `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Modules)
}

func TestHandleRunModule(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/modules/echo/run",
		strings.NewReader(`{"params": {"days": 30}}`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res modules.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, modules.StatusSuccess, res.Status)
	assert.Equal(t, "echo", res.ModuleID)

	params, ok := res.Data["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(30), params["days"])
}

func TestHandleRunModule_EmptyBodyUsesDefaults(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/modules/echo/run", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res modules.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, modules.StatusSuccess, res.Status)
}

func TestHandleRunModule_UnknownIDIs404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/modules/missing/run", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown module")
}

func TestHandleRunModule_BadJSONIs400(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/modules/echo/run", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTools(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var descs []struct {
		Name       string                     `json:"name"`
		Parameters map[string]json.RawMessage `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &descs))

	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "run_echo")
	assert.Contains(t, names, "list_campaigns")

	// A second render must be byte-identical.
	rec2 := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	assert.Equal(t, rec.Body.String(), rec2.Body.String())
}

func TestHandleAsk_Validation(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/agent/ask", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/agent/ask", strings.NewReader(`{"question": ""}`))
	rec = httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question is required")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/modules", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
