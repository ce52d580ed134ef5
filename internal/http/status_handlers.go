package http

import (
	"context"
	nethttp "net/http"
	"time"

	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/connectors/reportstore"
	"go-sla-monitor-ui/internal/connectors/shipping"
	"go-sla-monitor-ui/internal/connectors/slamaster"
)

// servicesStatusHandler probes every configured upstream so the dashboard
// can show which integrations are alive.
func servicesStatusHandler(mon *monitoring.Client, master *slamaster.Client, ship *shipping.Client, store *reportstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		services := map[string]any{}

		services["monitoring"] = probeStatus(ctx, "monitoring", mon.Enabled(), mon.Probe)
		services["sla_master"] = probeStatus(ctx, "sla_master", master.Enabled(), master.Probe)
		services["shipping"] = probeStatus(ctx, "shipping", ship.Enabled(), ship.Probe)

		archive := map[string]any{"enabled": store != nil}
		if store != nil {
			start := time.Now()
			err := store.Ping(ctx)
			recordDBQuery("appsqlite", "Ping", time.Since(start).Seconds(), err)
			archive["ok"] = err == nil
			archive["path"] = store.Path()
			if err != nil {
				archive["error"] = err.Error()
			}
		}
		services["report_archive"] = archive

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"checked_at": time.Now().UTC()},
			"data": services,
		})
	}
}

func probeStatus(ctx context.Context, target string, enabled bool, probe func(context.Context) (int64, error)) map[string]any {
	out := map[string]any{"enabled": enabled}
	if !enabled {
		return out
	}

	start := time.Now()
	ping, err := probe(ctx)
	recordUpstreamCall(target, "Probe", time.Since(start).Seconds(), err)

	out["ok"] = err == nil
	out["ping_ms"] = ping
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}
