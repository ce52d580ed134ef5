package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/fetch"
	"go-sla-monitor-ui/internal/table"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body: %v: %s", err, rec.Body.String())
	}
	return out
}

func TestSitesDownHandlerDisabled(t *testing.T) {
	h := sitesDownHandler(nil, 20)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(nethttp.MethodGet, "/api/v1/sites/down", nil))

	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] == nil {
		t.Fatalf("expected error payload, got %v", body)
	}
}

func TestSyncHandlerRejectsGet(t *testing.T) {
	h := syncHandler(nil)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(nethttp.MethodGet, "/api/v1/sla/sync", nil))

	if rec.Code != nethttp.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestReportArchiveDetailHandlerInvalidID(t *testing.T) {
	h := reportArchiveDetailHandler(nil)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(nethttp.MethodGet, "/api/v1/reports/archive/abc", nil))
	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("nil store must answer 503, got %d", rec.Code)
	}
}

func TestReportArchiveHandlerDisabled(t *testing.T) {
	h := reportArchiveHandler(nil, 24)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(nethttp.MethodGet, "/api/v1/reports/archive", nil))
	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestParseTableQueryDefaults(t *testing.T) {
	r := httptest.NewRequest(nethttp.MethodGet, "/api/v1/sites/down", nil)
	tq := parseTableQuery(r, 20)

	if tq.page != 1 || tq.perPage != 20 {
		t.Fatalf("paging defaults wrong: %+v", tq)
	}
	if !tq.all {
		t.Fatalf("default scope must fetch everything")
	}
	if tq.order != table.OrderNone {
		t.Fatalf("default order must be none, got %q", tq.order)
	}
}

func TestParseTableQueryExplicit(t *testing.T) {
	r := httptest.NewRequest(nethttp.MethodGet,
		"/api/v1/sites/down?q=batu&sort=slaAvg&order=desc&page=3&per_page=5&scope=page&date_from=2025-06-01&date_to=2025-06-15", nil)
	tq := parseTableQuery(r, 20)

	if tq.filter != "batu" || tq.sort != "slaAvg" || tq.order != table.OrderDesc {
		t.Fatalf("sort state wrong: %+v", tq)
	}
	if tq.page != 3 || tq.perPage != 5 || tq.all {
		t.Fatalf("paging wrong: %+v", tq)
	}
	if tq.from.Format("2006-01-02") != "2025-06-01" || tq.to.Format("2006-01-02") != "2025-06-15" {
		t.Fatalf("date range wrong: %+v", tq)
	}
}

func TestParseTableQuerySortWithoutOrderDefaultsAsc(t *testing.T) {
	r := httptest.NewRequest(nethttp.MethodGet, "/api/v1/sites/down?sort=siteName", nil)
	tq := parseTableQuery(r, 20)
	if tq.order != table.OrderAsc {
		t.Fatalf("sort without order must default asc, got %q", tq.order)
	}
}

func TestTableQueryStateClickAdvancesCycle(t *testing.T) {
	r := httptest.NewRequest(nethttp.MethodGet,
		"/api/v1/sites/down?sort=siteName&order=asc&click=siteName", nil)
	st := parseTableQuery(r, 20).state()
	if st.SortField != "siteName" || st.SortOrder != table.OrderDesc {
		t.Fatalf("click must advance asc to desc: %+v", st)
	}

	r = httptest.NewRequest(nethttp.MethodGet,
		"/api/v1/sites/down?sort=siteName&order=desc&click=slaAvg", nil)
	st = parseTableQuery(r, 20).state()
	if st.SortField != "slaAvg" || st.SortOrder != table.OrderAsc {
		t.Fatalf("click on another column must restart asc: %+v", st)
	}
}

func TestSitesDownHandlerEndToEnd(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	upstream := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 1, "siteId": "SITE-1", "siteName": "Sumur Batu", "downSince": now.Add(-10 * 24 * time.Hour).Format(time.RFC3339)},
				{"id": 2, "siteId": "SITE-2", "siteName": "Gunung Kidul", "downSince": now.Add(-time.Hour).Format(time.RFC3339)},
			},
			"pagination": map[string]any{"page": 1, "limit": 0, "total": 2, "totalPages": 1},
			"summary":    map[string]any{"totalSites": 50},
		})
	}))
	defer upstream.Close()

	mon := monitoring.NewClient(upstream.URL, 5*time.Second)
	orch := fetch.New(mon, nil, nil, clockwork.NewFakeClockAt(now), zerolog.Nop(), fetch.Options{})

	h := sitesDownHandler(orch, 20)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(nethttp.MethodGet, "/api/v1/sites/down?sort=downSeconds&order=desc", nil))

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	meta := body["meta"].(map[string]any)
	if meta["mode"] != "client" {
		t.Fatalf("default scope must be client mode: %v", meta)
	}
	if meta["total"].(float64) != 2 {
		t.Fatalf("total wrong: %v", meta)
	}

	rows := body["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["siteId"] != "SITE-1" {
		t.Fatalf("desc sort by downSeconds must list the long outage first: %v", first)
	}
	if first["status"] != "Warning" {
		t.Fatalf("ten-day outage must be Warning: %v", first["status"])
	}
	if first["downFor"] != "10 hari" {
		t.Fatalf("downFor wrong: %v", first["downFor"])
	}
}

func TestNormalizeMetricPath(t *testing.T) {
	if got := normalizeMetricPath("/api/v1/reports/archive/42"); got != "/api/v1/reports/archive/{id}" {
		t.Fatalf("archive id path not collapsed: %q", got)
	}
	if got := normalizeMetricPath("/api/v1/sites/down"); got != "/api/v1/sites/down" {
		t.Fatalf("plain path must pass through: %q", got)
	}
}
