package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/connectors/shipping"
	"go-sla-monitor-ui/internal/connectors/slamaster"
	"go-sla-monitor-ui/internal/table"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func masterServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"sites": []map[string]any{
					{
						"siteId":  "SITE-1",
						"siteSla": map[string]any{"slaAverage": 92.5, "statusSP": "Potensi SP"},
						"problem": "baterai drop",
					},
				},
				"pagination": map[string]any{"page": 1, "totalPages": 1},
			},
		})
	}))
}

func downBody(siteID string, downSince time.Time) map[string]any {
	return map[string]any{
		"data": []map[string]any{
			{
				"id":        int64(1),
				"siteId":    siteID,
				"siteName":  "Sumur Batu",
				"downSince": downSince.Format(time.RFC3339),
			},
		},
		"pagination": map[string]any{"page": 1, "limit": 0, "total": 1, "totalPages": 1},
		"summary":    map[string]any{"totalSites": 10},
	}
}

func newTestOrchestrator(t *testing.T, monURL, masterURL string) *Orchestrator {
	t.Helper()
	mon := monitoring.NewClient(monURL, 5*time.Second)
	var master *slamaster.Client
	if masterURL != "" {
		master = slamaster.NewClient(masterURL, 5*time.Second, 100, zerolog.Nop())
	}
	clock := clockwork.NewFakeClockAt(testNow)
	return New(mon, master, nil, clock, zerolog.Nop(), Options{})
}

func TestSitesDownMergesIndexAndRecomputesDowntime(t *testing.T) {
	master := masterServer(t)
	defer master.Close()

	mon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(downBody("SITE-1", testNow.Add(-2*24*time.Hour)))
	}))
	defer mon.Close()

	o := newTestOrchestrator(t, mon.URL, master.URL)
	snap, err := o.SitesDown(context.Background(), monitoring.Query{All: true, From: testNow.AddDate(0, 0, -14), To: testNow})
	if err != nil {
		t.Fatalf("SitesDown: %v", err)
	}

	if snap.Mode != table.ModeClient {
		t.Fatalf("All=true must produce client mode, got %q", snap.Mode)
	}
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap.Records))
	}

	rec := snap.Records[0]
	if rec.DownSeconds != 2*86400 {
		t.Fatalf("downSeconds = %d, want %d", rec.DownSeconds, 2*86400)
	}
	if rec.SlaAvg == nil || *rec.SlaAvg != 92.5 {
		t.Fatalf("enrichment slaAvg wrong: %+v", rec.Enrichment)
	}
	if rec.StatusSLA != "Fair" || rec.StatusSP != "Potensi SP" {
		t.Fatalf("enrichment statuses wrong: %+v", rec.Enrichment)
	}
	if !snap.FetchedAt.Equal(testNow) {
		t.Fatalf("fetchedAt must come from the injected clock, got %v", snap.FetchedAt)
	}
}

func TestSitesDownPagedQueryIsServerMode(t *testing.T) {
	mon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(downBody("SITE-1", testNow.Add(-time.Hour)))
	}))
	defer mon.Close()

	o := newTestOrchestrator(t, mon.URL, "")
	snap, err := o.SitesDown(context.Background(), monitoring.Query{Page: 1, Limit: 20, From: testNow.AddDate(0, 0, -14), To: testNow})
	if err != nil {
		t.Fatalf("SitesDown: %v", err)
	}
	if snap.Mode != table.ModeServer {
		t.Fatalf("paged query must produce server mode, got %q", snap.Mode)
	}
}

func TestSitesDownServesStaleSnapshotOnError(t *testing.T) {
	var failing atomic.Bool
	mon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(downBody("SITE-1", testNow.Add(-time.Hour)))
	}))
	defer mon.Close()

	o := newTestOrchestrator(t, mon.URL, "")
	q := monitoring.Query{All: true, From: testNow.AddDate(0, 0, -14), To: testNow}

	good, err := o.SitesDown(context.Background(), q)
	if err != nil {
		t.Fatalf("priming fetch: %v", err)
	}
	if good.Stale {
		t.Fatalf("fresh snapshot must not be stale")
	}

	failing.Store(true)
	// Different filter forces a fresh upstream fetch instead of a cache hit.
	q.Filter = "batu"
	stale, err := o.SitesDown(context.Background(), q)
	if err == nil {
		t.Fatalf("expected fetch error to surface")
	}
	if stale == nil {
		t.Fatalf("expected stale snapshot alongside the error")
	}
	if !stale.Stale || stale.FetchError == "" {
		t.Fatalf("snapshot must be marked stale: %+v", stale)
	}
	if len(stale.Records) != 1 {
		t.Fatalf("stale snapshot must carry the last good records")
	}
	if good.Stale {
		t.Fatalf("stale marking must not mutate the cached snapshot")
	}
}

func TestSitesDownNoSnapshotOnFirstError(t *testing.T) {
	mon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer mon.Close()

	o := newTestOrchestrator(t, mon.URL, "")
	snap, err := o.SitesDown(context.Background(), monitoring.Query{All: true, From: testNow.AddDate(0, 0, -14), To: testNow})
	if err == nil {
		t.Fatalf("expected error")
	}
	if snap != nil {
		t.Fatalf("no prior snapshot to serve, got %+v", snap)
	}
}

func TestSyncDropsSnapshotsAndReprimes(t *testing.T) {
	var downCalls atomic.Int64
	mon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sla/sync":
			_ = json.NewEncoder(w).Encode(map[string]any{"inserted": 2, "updated": 1})
		case "/sites/down":
			downCalls.Add(1)
			_ = json.NewEncoder(w).Encode(downBody("SITE-1", testNow.Add(-time.Hour)))
		case "/sites/up":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer mon.Close()

	o := newTestOrchestrator(t, mon.URL, "")

	res, err := o.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Inserted != 2 || res.Updated != 1 {
		t.Fatalf("sync result wrong: %+v", res)
	}
	if downCalls.Load() != 1 {
		t.Fatalf("sync must re-prime the down view, calls=%d", downCalls.Load())
	}
}

func TestShippingDisabled(t *testing.T) {
	o := newTestOrchestrator(t, "http://127.0.0.1:1", "")
	if _, err := o.ShippingTable(context.Background(), shipping.Query{}, testNow, testNow, false); err == nil {
		t.Fatalf("nil shipping client must error")
	}
}
