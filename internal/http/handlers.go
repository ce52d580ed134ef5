package http

import (
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/connectors/shipping"
	"go-sla-monitor-ui/internal/fetch"
	"go-sla-monitor-ui/internal/sla"
	"go-sla-monitor-ui/internal/table"
)

// Column descriptors for each table entity. One descriptor serves every
// instance of that table; the engine itself is shared.

var downTable = table.Descriptor[sla.DownRecord]{
	Columns: []table.Column[sla.DownRecord]{
		table.StringColumn("siteName", func(r sla.DownRecord) string { return r.SiteName }),
		table.StringColumn("siteId", func(r sla.DownRecord) string { return r.SiteID }),
		table.NumberColumn("slaAvg", func(r sla.DownRecord) (float64, bool) {
			if r.SlaAvg == nil {
				return 0, false
			}
			return *r.SlaAvg, true
		}),
		table.NumberColumn("downSeconds", func(r sla.DownRecord) (float64, bool) {
			return float64(r.DownSeconds), true
		}),
		table.TimeColumn("downSince", func(r sla.DownRecord) *time.Time { return r.DownSince }),
		table.RankColumn("statusSLA", func(r sla.DownRecord) int { return sla.RankStatus(r.StatusSLA) }),
		table.RankColumn("statusSP", func(r sla.DownRecord) int { return sla.RankSP(r.StatusSP) }),
		table.RankColumn("status", func(r sla.DownRecord) int { return sla.RankDowntime(r.Status) }),
	},
	FilterFields: func(r sla.DownRecord) []string {
		return []string{r.SiteName, r.SiteID}
	},
}

var upTable = table.Descriptor[sla.SiteRecord]{
	Columns: []table.Column[sla.SiteRecord]{
		table.StringColumn("siteName", func(r sla.SiteRecord) string { return r.SiteName }),
		table.StringColumn("siteId", func(r sla.SiteRecord) string { return r.SiteID }),
		table.NumberColumn("slaAvg", func(r sla.SiteRecord) (float64, bool) {
			if r.SlaAvg == nil {
				return 0, false
			}
			return *r.SlaAvg, true
		}),
		table.RankColumn("statusSLA", func(r sla.SiteRecord) int { return sla.RankStatus(r.StatusSLA) }),
		table.RankColumn("statusSP", func(r sla.SiteRecord) int { return sla.RankSP(r.StatusSP) }),
	},
	FilterFields: func(r sla.SiteRecord) []string {
		return []string{r.SiteName, r.SiteID}
	},
}

var shippingTable = table.Descriptor[sla.ShippingRecord]{
	Columns: []table.Column[sla.ShippingRecord]{
		table.StringColumn("siteName", func(r sla.ShippingRecord) string { return r.SiteName }),
		table.StringColumn("item", func(r sla.ShippingRecord) string { return r.Item }),
		table.StringColumn("shipStatus", func(r sla.ShippingRecord) string { return r.ShipStatus }),
		table.TimeColumn("shippedAt", func(r sla.ShippingRecord) *time.Time { return r.ShippedAt }),
		table.NumberColumn("slaAvg", func(r sla.ShippingRecord) (float64, bool) {
			if r.SlaAvg == nil {
				return 0, false
			}
			return *r.SlaAvg, true
		}),
		table.RankColumn("statusSLA", func(r sla.ShippingRecord) int { return sla.RankStatus(r.StatusSLA) }),
	},
	FilterFields: func(r sla.ShippingRecord) []string {
		return []string{r.SiteName, r.SiteID, r.TrackingNo}
	},
}

var masterTable = table.Descriptor[sla.AuxiliaryRecord]{
	Columns: []table.Column[sla.AuxiliaryRecord]{
		table.StringColumn("siteId", func(r sla.AuxiliaryRecord) string { return r.SiteID }),
		table.NumberColumn("slaAverage", func(r sla.AuxiliaryRecord) (float64, bool) {
			if r.SlaAverage == nil {
				return 0, false
			}
			return *r.SlaAverage, true
		}),
		table.RankColumn("statusSP", func(r sla.AuxiliaryRecord) int { return sla.RankSP(r.StatusSP) }),
	},
	FilterFields: func(r sla.AuxiliaryRecord) []string {
		return []string{r.SiteID}
	},
}

type tableQuery struct {
	filter  string
	sort    string
	order   table.Order
	click   string
	page    int
	perPage int
	all     bool
	from    time.Time
	to      time.Time
}

func parseTableQuery(r *nethttp.Request, defaultPerPage int) tableQuery {
	q := r.URL.Query()

	tq := tableQuery{
		filter:  strings.TrimSpace(q.Get("q")),
		sort:    strings.TrimSpace(q.Get("sort")),
		order:   parseOrder(q.Get("order")),
		click:   strings.TrimSpace(q.Get("click")),
		page:    1,
		perPage: defaultPerPage,
		all:     q.Get("scope") != "page",
	}
	if tq.sort != "" && tq.order == table.OrderNone {
		tq.order = table.OrderAsc
	}
	if raw := q.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			tq.page = parsed
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			tq.perPage = parsed
		}
	}
	if raw := strings.TrimSpace(q.Get("date_from")); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			tq.from = parsed.UTC()
		}
	}
	if raw := strings.TrimSpace(q.Get("date_to")); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			tq.to = parsed.UTC()
		}
	}
	return tq
}

func parseOrder(raw string) table.Order {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return table.OrderAsc
	case "desc":
		return table.OrderDesc
	default:
		return table.OrderNone
	}
}

func (tq tableQuery) state() table.State {
	st := table.State{
		FilterText: tq.filter,
		SortField:  tq.sort,
		SortOrder:  tq.order,
		Page:       tq.page,
		PerPage:    tq.perPage,
	}
	// A header click advances the tri-state sort cycle server-side so the
	// dashboard JS does not reimplement it.
	if tq.click != "" {
		st = table.NextSort(st, tq.click)
	}
	return st
}

func (tq tableQuery) rangeOr(orch *fetch.Orchestrator) (time.Time, time.Time) {
	from, to := tq.from, tq.to
	if from.IsZero() || to.IsZero() {
		dfrom, dto := orch.DefaultRange()
		if from.IsZero() {
			from = dfrom
		}
		if to.IsZero() {
			to = dto
		}
	}
	return from, to
}

func viewMeta[T any](view table.Page[T], st table.State, tq tableQuery) map[string]any {
	meta := map[string]any{
		"page":        view.Page,
		"per_page":    view.PerPage,
		"total":       view.Total,
		"total_pages": view.TotalPages,
		"mode":        view.Mode,
		"sort":        st.SortField,
		"order":       st.SortOrder,
		"filter":      tq.filter,
	}
	// In server-paginated mode the filter has to travel upstream; the
	// small local set cannot answer it alone.
	if view.Mode == table.ModeServer {
		meta["server_filter"] = tq.filter
	}
	return meta
}

func sitesDownHandler(orch *fetch.Orchestrator, defaultPerPage int) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		tq := parseTableQuery(r, defaultPerPage)
		from, to := tq.rangeOr(orch)

		mq := monitoring.Query{All: tq.all, From: from, To: to}
		if !tq.all {
			mq.Filter = tq.filter
			mq.Page = tq.page
			mq.Limit = tq.perPage
		}

		start := time.Now()
		snap, err := orch.SitesDown(r.Context(), mq)
		recordUpstreamCall("monitoring", "SitesDown", time.Since(start).Seconds(), err)
		if snap == nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"error": "failed to fetch down sites",
			})
			return
		}

		st := tq.state()
		view := downTable.View(snap.Records, st, snap.Mode, table.Meta{
			Page:       snap.Pagination.Page,
			Total:      snap.Pagination.Total,
			TotalPages: snap.Pagination.TotalPages,
		})

		meta := viewMeta(view, st, tq)
		meta["fetched_at"] = snap.FetchedAt
		if snap.Stale {
			meta["stale"] = true
			meta["fetch_error"] = snap.FetchError
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    meta,
			"summary": snap.Summary,
			"data":    view.Rows,
		})
	}
}

func sitesUpHandler(orch *fetch.Orchestrator, defaultPerPage int) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		tq := parseTableQuery(r, defaultPerPage)
		from, to := tq.rangeOr(orch)

		mq := monitoring.Query{All: tq.all, From: from, To: to}
		if !tq.all {
			mq.Filter = tq.filter
			mq.Page = tq.page
			mq.Limit = tq.perPage
		}

		start := time.Now()
		snap, err := orch.SitesUp(r.Context(), mq)
		recordUpstreamCall("monitoring", "SitesUp", time.Since(start).Seconds(), err)
		if snap == nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"error": "failed to fetch up sites",
			})
			return
		}

		st := tq.state()
		view := upTable.View(snap.Records, st, snap.Mode, table.Meta{
			Page:       snap.Pagination.Page,
			Total:      snap.Pagination.Total,
			TotalPages: snap.Pagination.TotalPages,
		})

		meta := viewMeta(view, st, tq)
		meta["fetched_at"] = snap.FetchedAt
		if snap.Stale {
			meta["stale"] = true
			meta["fetch_error"] = snap.FetchError
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    meta,
			"summary": snap.Summary,
			"data":    view.Rows,
		})
	}
}

func slaMasterHandler(orch *fetch.Orchestrator, defaultPerPage int) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		tq := parseTableQuery(r, defaultPerPage)
		from, to := tq.rangeOr(orch)

		start := time.Now()
		records := orch.MasterRecords(r.Context(), from, to)
		recordUpstreamCall("sla_master", "MasterRecords", time.Since(start).Seconds(), nil)

		st := tq.state()
		if st.SortField == "" {
			st.SortField = "siteId"
			st.SortOrder = table.OrderAsc
		}
		// The index is always held in full, so this table never defers to
		// server paging.
		view := masterTable.View(records, st, table.ModeClient, table.Meta{})

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": viewMeta(view, st, tq),
			"data": view.Rows,
		})
	}
}

func shippingHandler(orch *fetch.Orchestrator, defaultPerPage int, retur bool) nethttp.HandlerFunc {
	operation := "Shipping"
	if retur {
		operation = "Retur"
	}
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		tq := parseTableQuery(r, defaultPerPage)
		from, to := tq.rangeOr(orch)

		sq := shipping.Query{All: tq.all}
		if !tq.all {
			sq.Filter = tq.filter
			sq.Page = tq.page
			sq.Limit = tq.perPage
		}

		start := time.Now()
		snap, err := orch.ShippingTable(r.Context(), sq, from, to, retur)
		recordUpstreamCall("shipping", operation, time.Since(start).Seconds(), err)
		if err != nil {
			status := nethttp.StatusBadGateway
			if strings.Contains(err.Error(), "disabled") {
				status = nethttp.StatusServiceUnavailable
			}
			writeJSON(w, status, map[string]any{"error": err.Error()})
			return
		}

		st := tq.state()
		view := shippingTable.View(snap.Records, st, snap.Mode, table.Meta{
			Page:       snap.Pagination.Page,
			Total:      snap.Pagination.Total,
			TotalPages: snap.Pagination.TotalPages,
		})

		meta := viewMeta(view, st, tq)
		meta["fetched_at"] = snap.FetchedAt

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": view.Rows,
		})
	}
}

func syncHandler(orch *fetch.Orchestrator) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		if orch == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "monitoring integration disabled (set APP_MONITORING_ENABLED=true)",
			})
			return
		}

		start := time.Now()
		result, err := orch.Sync(r.Context())
		recordUpstreamCall("monitoring", "Sync", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"error": "synchronization failed: " + err.Error(),
			})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"synced": true},
			"data": result,
		})
	}
}
