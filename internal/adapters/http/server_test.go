package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/metrics"
	"github.com/aretw0/greenscreen/pkg/results/memory"
	"github.com/aretw0/greenscreen/pkg/session"
)

func newTestHandler(t *testing.T) (http.Handler, *session.Registry, *memory.Store) {
	t.Helper()
	cat, err := catalog.NewBuilder().
		Screen("sign_on").Identifier(1, 2, "SIGN ON").
		Input("user_id", 10, 30, 8).
		Input("password", 12, 30, 8, domain.AttrHidden).
		Screen("loan_details").Identifier(1, 2, "LOAN DETAILS").
		Display("borrower_name", 5, 35, 30).
		Build()
	require.NoError(t, err)
	nav, err := catalog.ParseNavigation([]byte(`
initial_screen: sign_on
rules:
  - {from: sign_on, key: ENTER, requires: [user_id], to: loan_details}
`), "test", cat)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.New(reg)
	sessions := session.NewRegistry()
	store := memory.NewStore()

	return NewHandler(Config{
		Version:    "v0.0.0-test",
		Catalog:    cat,
		Navigation: nav,
		Sessions:   sessions,
		Gatherer:   reg,
		Results:    store,
	}), sessions, store
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rr := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rr := get(t, h, "/info")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "greenscreen-host", resp["app"])
	assert.Equal(t, "v0.0.0-test", resp["version"])
	assert.Equal(t, float64(2), resp["screens"])
	assert.Equal(t, "sign_on", resp["initial_screen"])
}

func TestScreens(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := get(t, h, "/screens")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []screenSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, []string{"user_id", "password"}, list[0].Inputs)
	assert.Equal(t, []string{"borrower_name"}, list[1].Displays)

	rr = get(t, h, "/screens/loan_details")
	require.Equal(t, http.StatusOK, rr.Code)
	var def domain.ScreenDefinition
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &def))
	assert.Equal(t, "LOAN DETAILS", def.Identifier.Text)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/screens/nope").Code)
}

func TestSessionsAndGraph(t *testing.T) {
	h, sessions, _ := newTestHandler(t)
	handle, err := sessions.Open("10.0.0.7:5123")
	require.NoError(t, err)
	defer handle.Close()
	handle.Update("loan_details", 3)

	rr := get(t, h, "/sessions")
	require.Equal(t, http.StatusOK, rr.Code)
	var snaps []session.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, "loan_details", snaps[0].Screen)
	assert.Equal(t, 3, snaps[0].Turns)

	assert.Equal(t, http.StatusOK, get(t, h, "/sessions/"+handle.ID()).Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/sessions/missing").Code)

	rr = get(t, h, "/graph?session="+handle.ID())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `sign_on -- "ENTER" --> loan_details`)
	assert.Contains(t, rr.Body.String(), "class loan_details current;")
}

func TestMetrics(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rr := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "greenscreen_host_sessions_active")
}

func TestResults(t *testing.T) {
	h, _, store := newTestHandler(t)
	require.NoError(t, store.Save(context.Background(), &domain.Result{RunID: "run-1", Workflow: "wf", Code: domain.CodeOK}))

	rr := get(t, h, "/results")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["run-1"]`, rr.Body.String())

	rr = get(t, h, "/results/run-1")
	require.Equal(t, http.StatusOK, rr.Code)
	var res domain.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "wf", res.Workflow)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/results/run-2").Code)
}
