package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestSitesDownParsesList(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites/down" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"id":          int64(7),
					"siteId":      "SITE-1",
					"siteName":    " Sumur Batu ",
					"downSince":   "2025-06-10T08:00:00Z",
					"downSeconds": int64(999),
				},
			},
			"pagination": map[string]any{"page": 2, "limit": 20, "total": 41, "totalPages": 3},
			"summary":    map[string]any{"totalSites": 120},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	page, err := c.SitesDown(context.Background(), Query{
		Filter: "batu",
		Page:   2,
		Limit:  20,
		From:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SitesDown: %v", err)
	}

	if gotQuery.Get("q") != "batu" || gotQuery.Get("page") != "2" || gotQuery.Get("limit") != "20" {
		t.Fatalf("query params wrong: %v", gotQuery)
	}
	if gotQuery.Get("from") != "2025-06-01" || gotQuery.Get("to") != "2025-06-15" {
		t.Fatalf("date params wrong: %v", gotQuery)
	}

	if len(page.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(page.Records))
	}
	rec := page.Records[0]
	if rec.SiteName != "Sumur Batu" {
		t.Fatalf("siteName not trimmed: %q", rec.SiteName)
	}
	if rec.DownSince == nil || !rec.DownSince.Equal(time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("downSince wrong: %v", rec.DownSince)
	}
	if page.Pagination.TotalPages != 3 || page.Summary.TotalSites != 120 {
		t.Fatalf("envelope wrong: %+v %+v", page.Pagination, page.Summary)
	}
}

func TestQueryAllRequestsLimitZero(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.SitesUp(context.Background(), Query{All: true, Page: 3, Limit: 20}); err != nil {
		t.Fatalf("SitesUp: %v", err)
	}
	if gotLimit != "0" {
		t.Fatalf("All=true must request limit=0, got %q", gotLimit)
	}
}

func TestSyncPostsAndParsesCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sla/sync" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"inserted": 3, "updated": 5, "errors": 1, "skipped": 2,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Inserted != 3 || res.Updated != 5 || res.Errors != 1 || res.Skipped != 2 {
		t.Fatalf("sync counts wrong: %+v", res)
	}
}

func TestSyncSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "db locked", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.Sync(context.Background()); err == nil {
		t.Fatalf("expected error from failing sync")
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient("", 5*time.Second)
	if c.Enabled() {
		t.Fatalf("empty endpoint must be disabled")
	}
	if _, err := c.SitesDown(context.Background(), Query{}); err == nil {
		t.Fatalf("disabled client must error")
	}
}
