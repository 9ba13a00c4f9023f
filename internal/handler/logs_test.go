package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slogger-dev/slogger/internal/ingest"
	"github.com/slogger-dev/slogger/internal/model"
	"github.com/slogger-dev/slogger/internal/query"
)

type fakeIngester struct {
	source   string
	body     []byte
	inserted int
	err      error
}

func (f *fakeIngester) Ingest(ctx context.Context, source string, body []byte) (int, error) {
	f.source = source
	f.body = body
	return f.inserted, f.err
}

type fakeQuerier struct {
	filter  query.Filter
	logs    []model.LogEntry
	total   int
	sources []string
	err     error
}

func (f *fakeQuerier) Logs(ctx context.Context, filter query.Filter) ([]model.LogEntry, int, error) {
	f.filter = filter
	return f.logs, f.total, f.err
}

func (f *fakeQuerier) Sources(ctx context.Context) ([]string, error) {
	return f.sources, f.err
}

type fakeLister struct {
	names []string
	err   error
}

func (f *fakeLister) List(ctx context.Context) ([]string, error) {
	return f.names, f.err
}

func newContext(t *testing.T, method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestIngest_Success(t *testing.T) {
	ing := &fakeIngester{inserted: 3}
	h := &LogsHandler{Pipeline: ing}

	c, rec := newContext(t, http.MethodPost, "/api/logs/svc1", `[{"a":1},"plain",42]`)
	c.SetParamNames("source")
	c.SetParamValues("svc1")

	if err := h.Ingest(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ing.source != "svc1" {
		t.Errorf("source = %q", ing.source)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["inserted"] != 3 {
		t.Errorf("inserted = %d, want 3", resp["inserted"])
	}
}

func TestIngest_InvalidPayloadIs400(t *testing.T) {
	h := &LogsHandler{Pipeline: &fakeIngester{err: ingest.ErrInvalidPayload}}

	c, rec := newContext(t, http.MethodPost, "/api/logs/svc1", `{"not":"array"}`)
	c.SetParamNames("source")
	c.SetParamValues("svc1")

	if err := h.Ingest(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "body must be a json array") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestIngest_StorageErrorIs500(t *testing.T) {
	h := &LogsHandler{Pipeline: &fakeIngester{err: errors.New("partition create failed")}}

	c, rec := newContext(t, http.MethodPost, "/api/logs/svc1", `[{}]`)
	c.SetParamNames("source")
	c.SetParamValues("svc1")

	if err := h.Ingest(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Error("failure must carry an explicit error body")
	}
}

func TestQuery_ParsesFilterParams(t *testing.T) {
	q := &fakeQuerier{total: 7}
	h := &LogsHandler{Engine: q}

	c, rec := newContext(t, http.MethodGet,
		"/api/logs?sources=svc1,svc2&search=boom&json_path=%24.level&from=2025-01-01T00:00:00Z&to=junk&limit=abc&offset=-9", "")

	if err := h.Query(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	f := q.filter
	if len(f.Sources) != 2 || f.Sources[0] != "svc1" {
		t.Errorf("sources = %v", f.Sources)
	}
	if f.Search != "boom" || f.JSONPath != "$.level" {
		t.Errorf("search=%q json_path=%q", f.Search, f.JSONPath)
	}
	if f.From == nil || !f.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", f.From)
	}
	if f.To != nil {
		t.Error("malformed to bound must be treated as absent")
	}
	if f.Limit != query.DefaultLimit {
		t.Errorf("limit = %d, want default", f.Limit)
	}
	if f.Offset != 0 {
		t.Errorf("offset = %d, want 0", f.Offset)
	}

	var resp struct {
		Logs  []model.LogEntry `json:"logs"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 7 {
		t.Errorf("total = %d", resp.Total)
	}
}

func TestQuery_FailureIsExplicitError(t *testing.T) {
	h := &LogsHandler{Engine: &fakeQuerier{err: errors.New("db gone")}}
	c, rec := newContext(t, http.MethodGet, "/api/logs", "")

	if err := h.Query(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (not empty-but-successful)", rec.Code)
	}
}

func TestSources(t *testing.T) {
	h := &LogsHandler{Engine: &fakeQuerier{sources: []string{"api", "worker"}}}
	c, rec := newContext(t, http.MethodGet, "/api/sources", "")

	if err := h.Sources(c); err != nil {
		t.Fatal(err)
	}
	var resp map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp["sources"]) != 2 || resp["sources"][0] != "api" {
		t.Errorf("sources = %v", resp["sources"])
	}
}

func TestListPartitions_EmptyIsJSONArray(t *testing.T) {
	h := &LogsHandler{Partitions: &fakeLister{}}
	c, rec := newContext(t, http.MethodGet, "/api/partitions", "")

	if err := h.ListPartitions(c); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), `"partitions":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
