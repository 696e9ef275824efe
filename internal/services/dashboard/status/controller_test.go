package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/NordCoder/sitestatus/internal/auth"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

type fixture struct {
	ctrl   *Controller
	logs   *memLogs
	pinger *stubPinger
}

func newFixture(t *testing.T, cfg Config, admin *auth.AdminGuard) *fixture {
	t.Helper()
	pinger := &stubPinger{replies: map[string]*PingResult{
		"https://acme.example.com/":       {StatusCode: 200, FinalURL: "https://acme.example.com/"},
		"https://docs.example.org/about":  {StatusCode: 200},
		"https://docs.example.org/admin":  {StatusCode: 401},
		"https://docs.example.org/submit": {StatusCode: 405},
	}}
	logs := newMemLogs()
	engine := NewEngine(pinger, logs, EngineConfig{Timeout: time.Second}, zap.NewNop())
	uc := NewUsecase(acmeRegistry(), engine, logs, admin, cfg, zap.NewNop())
	uc.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	return &fixture{ctrl: NewController(uc, zap.NewNop()), logs: logs, pinger: pinger}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

type updateReply struct {
	Message   string           `json:"message"`
	Site      string           `json:"site"`
	Timestamp string           `json:"timestamp"`
	Results   []map[string]any `json:"results"`
}

func TestUpdateStatusEndpoint(t *testing.T) {
	f := newFixture(t, Config{}, nil)

	rr := httptest.NewRecorder()
	f.ctrl.UpdateStatus(rr, httptest.NewRequest(http.MethodPost, "/updateStatus/acme", nil), map[string]string{"site": "acme"})
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[updateReply](t, rr)
	assert.Equal(t, "Updated 2 routes for acme", body.Message)
	assert.Equal(t, "acme", body.Site)
	assert.Equal(t, "2026-10-17T09:30:00Z", body.Timestamp)
	require.Len(t, body.Results, 2)
	assert.Equal(t, true, body.Results[0]["logged"])
	assert.Equal(t, float64(-1), body.Results[1]["statusCode"])
	assert.Equal(t, false, body.Results[1]["logged"])

	rr = httptest.NewRecorder()
	f.ctrl.UpdateStatus(rr, httptest.NewRequest(http.MethodPost, "/updateStatus/nope", nil), map[string]string{"site": "nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, rr.Body.String())
}

func TestReportEndpoint(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	report := func(q string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		f.ctrl.Report(rr, httptest.NewRequest(http.MethodPost, "/report?"+q, nil), nil)
		return rr
	}

	rr := report("project=docs&route=" + url.QueryEscape("/about"))
	require.Equal(t, http.StatusOK, rr.Code)
	ok := decode[ReportResult](t, rr)
	assert.True(t, ok.Result.Logged)
	assert.Empty(t, ok.Message)

	rr = report("project=docs&route=/admin")
	auth401 := decode[ReportResult](t, rr)
	assert.False(t, auth401.Result.Logged)
	assert.Equal(t, "Endpoint requires authentication", auth401.Message)
	assert.NotEmpty(t, auth401.Help)

	rr = report("project=docs&route=/submit")
	mm := decode[ReportResult](t, rr)
	assert.True(t, mm.Result.MethodMismatch)
	assert.Equal(t, "Endpoint does not accept GET", mm.Message)

	assert.Equal(t, http.StatusNotFound, report("project=docs&route=/elsewhere").Code)
	assert.Equal(t, http.StatusNotFound, report("project=nope&route=/").Code)
	assert.Equal(t, http.StatusBadRequest, report("project=docs").Code)
	assert.Equal(t, http.StatusBadRequest, report("route=/").Code)

	assert.Len(t, f.logs.snapshot(), 1)
	assert.Len(t, f.pinger.calls, 3)
}

func TestClearEndpoint(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	f := newFixture(t, Config{}, auth.NewAdminGuard(string(hash)))
	clearLogs := func(q, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/status/clear?"+q, nil)
		if token != "" {
			req.Header.Set(AdminTokenHeader, token)
		}
		rr := httptest.NewRecorder()
		f.ctrl.Clear(rr, req, nil)
		return rr
	}

	for _, e := range []statuslog.Entry{
		{ProjectSlug: "acme", RoutePath: "/", StatusCode: 200},
		{ProjectSlug: "acme", RoutePath: "/", StatusCode: 0},
		{ProjectSlug: "docs", RoutePath: "/about", StatusCode: 200},
	} {
		require.NoError(t, f.logs.Insert(t.Context(), &e))
	}

	assert.Equal(t, http.StatusBadRequest, clearLogs("", "letmein").Code)
	assert.Equal(t, http.StatusNotFound, clearLogs("project=nope", "letmein").Code)
	assert.Equal(t, http.StatusUnauthorized, clearLogs("project=acme", "").Code)
	assert.Equal(t, http.StatusUnauthorized, clearLogs("project=acme", "wrong").Code)

	rr := clearLogs("project=acme", "letmein")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Cleared logs for acme","deleted":2}`, rr.Body.String())
	rows := f.logs.snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, "docs", rows[0].ProjectSlug)
}

func TestClearForbiddenInProduction(t *testing.T) {
	f := newFixture(t, Config{Production: true}, nil)
	require.NoError(t, f.logs.Insert(t.Context(), &statuslog.Entry{ProjectSlug: "acme", RoutePath: "/"}))

	rr := httptest.NewRecorder()
	f.ctrl.Clear(rr, httptest.NewRequest(http.MethodPost, "/status/clear?project=acme", nil), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Forbidden in production"}`, rr.Body.String())
	assert.Len(t, f.logs.snapshot(), 1)
}

func TestRoutesEndpoint(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	require.NoError(t, f.logs.Insert(t.Context(), &statuslog.Entry{ProjectSlug: "acme", RoutePath: "/", StatusCode: 200}))

	rr := httptest.NewRecorder()
	f.ctrl.Routes(rr, httptest.NewRequest(http.MethodGet, "/status/routes?project=acme", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"routes":[
		{"projectSlug":"acme","path":"/","lastChecked":"2026-10-01T12:00:00Z"},
		{"projectSlug":"acme","path":"/api/items/[id]","lastChecked":null}
	]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	f.ctrl.Routes(rr, httptest.NewRequest(http.MethodGet, "/status/routes", nil), nil)
	all := decode[RoutesResult](t, rr)
	assert.Len(t, all.Routes, 6)
	assert.Equal(t, "docs", all.Routes[5].ProjectSlug)
}
