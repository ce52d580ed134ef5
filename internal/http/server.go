package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"go-sla-monitor-ui/internal/config"
	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/connectors/reportstore"
	"go-sla-monitor-ui/internal/connectors/shipping"
	"go-sla-monitor-ui/internal/connectors/slamaster"
	"go-sla-monitor-ui/internal/fetch"
)

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer   *nethttp.Server
	orch         *fetch.Orchestrator
	reportStore  *reportstore.Store
	log          zerolog.Logger
	refreshStop  context.CancelFunc
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config, log zerolog.Logger) (*Server, error) {
	clock := clockwork.NewRealClock()

	var monClient *monitoring.Client
	if cfg.MonitoringEnabled {
		monClient = monitoring.NewClient(cfg.MonitoringEndpoint, cfg.MonitoringTimeout)
	}
	var masterClient *slamaster.Client
	if cfg.SLAMasterEnabled {
		masterClient = slamaster.NewClient(cfg.SLAMasterEndpoint, cfg.SLAMasterTimeout, cfg.SLAMasterPageSize, log)
	}
	var shipClient *shipping.Client
	if cfg.ShippingEnabled {
		shipClient = shipping.NewClient(cfg.ShippingEndpoint, cfg.ShippingTimeout)
	}

	var orch *fetch.Orchestrator
	if monClient != nil {
		orch = fetch.New(monClient, masterClient, shipClient, clock, log, fetch.Options{
			RefreshInterval: cfg.RefreshInterval,
			IndexTTL:        cfg.IndexTTL,
		})
	}

	var store *reportstore.Store
	if cfg.ReportSQLitePath != "" {
		createdStore, err := reportstore.NewSQLiteStore(cfg.ReportSQLitePath)
		if err != nil {
			return nil, err
		}
		store = createdStore
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/v1/sites/down", sitesDownHandler(orch, cfg.MonitorPerPage))
	mux.HandleFunc("/api/v1/sites/up", sitesUpHandler(orch, cfg.MonitorPerPage))
	mux.HandleFunc("/api/v1/sla/master", slaMasterHandler(orch, cfg.MonitorPerPage))
	mux.HandleFunc("/api/v1/sla/sync", syncHandler(orch))
	mux.HandleFunc("/api/v1/shipping", shippingHandler(orch, cfg.ShippingPerPage, false))
	mux.HandleFunc("/api/v1/retur", shippingHandler(orch, cfg.ShippingPerPage, true))
	mux.HandleFunc("/api/v1/reports/monthly", monthlyReportHandler(orch, store))
	mux.HandleFunc("/api/v1/reports/archive", reportArchiveHandler(store, cfg.ReportArchiveLimit))
	mux.HandleFunc("/api/v1/reports/archive/", reportArchiveDetailHandler(store))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(monClient, masterClient, shipClient, store))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(log, observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer:  httpServer,
		orch:        orch,
		reportStore: store,
		log:         log,
	}, nil
}

// ListenAndServe starts the HTTP server and the background refresher.
func (s *Server) ListenAndServe() error {
	if s.orch != nil && s.orch.Enabled() {
		ctx, cancel := context.WithCancel(context.Background())
		s.refreshStop = cancel
		go s.orch.Run(ctx)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.refreshStop != nil {
		s.refreshStop()
	}
	if s.reportStore != nil {
		_ = s.reportStore.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func loggingMiddleware(log zerolog.Logger, next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
