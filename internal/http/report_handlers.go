package http

import (
	"database/sql"
	"errors"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-sla-monitor-ui/internal/connectors/reportstore"
	"go-sla-monitor-ui/internal/fetch"
	"go-sla-monitor-ui/internal/report"
)

func monthlyReportHandler(orch *fetch.Orchestrator, store *reportstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		month := time.Now().UTC()
		if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
			parsed, err := time.Parse("2006-01", raw)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{
					"error": "invalid month, expected YYYY-MM",
				})
				return
			}
			month = parsed
		}

		start := time.Now()
		data, err := orch.MonthlyReport(r.Context(), month)
		recordUpstreamCall("monitoring", "MonthlyReport", time.Since(start).Seconds(), err)
		if err != nil {
			recordReportRun("error", time.Since(start).Seconds())
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"error": "failed to fetch monthly report: " + err.Error(),
			})
			return
		}

		text := report.Render(*data)
		recordReportRun("ok", time.Since(start).Seconds())

		meta := map[string]any{
			"month":        month.Format("2006-01"),
			"generated_at": time.Now().UTC(),
		}
		if store != nil {
			saveStart := time.Now()
			id, saveErr := store.Save(r.Context(), month.Format("2006-01"), text)
			recordDBQuery("appsqlite", "SaveReport", time.Since(saveStart).Seconds(), saveErr)
			if saveErr != nil {
				meta["archive_error"] = saveErr.Error()
			} else {
				meta["archived_id"] = id
			}
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": map[string]any{
				"report": data,
				"text":   text,
			},
		})
	}
}

func reportArchiveHandler(store *reportstore.Store, limit int) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "report archive disabled (set APP_REPORT_SQLITE_PATH)",
			})
			return
		}

		start := time.Now()
		items, err := store.List(r.Context(), limit)
		recordDBQuery("appsqlite", "ListReports", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{
				"error": "failed to list archived reports: " + err.Error(),
			})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"count": len(items), "limit": limit},
			"data": items,
		})
	}
}

func reportArchiveDetailHandler(store *reportstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "report archive disabled (set APP_REPORT_SQLITE_PATH)",
			})
			return
		}

		rawID := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/archive/")
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{
				"error": "invalid report id",
			})
			return
		}

		start := time.Now()
		item, err := store.Get(r.Context(), id)
		recordDBQuery("appsqlite", "GetReport", time.Since(start).Seconds(), err)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, nethttp.StatusNotFound, map[string]any{
					"error": "report not found",
				})
				return
			}
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{
				"error": "failed to load archived report: " + err.Error(),
			})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"id": item.ID, "month": item.Month},
			"data": item,
		})
	}
}
