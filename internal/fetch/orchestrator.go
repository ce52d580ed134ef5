// Package fetch coordinates the upstream fetches behind every dashboard
// view: it builds the SLA master index, pulls primary record sets, merges
// them, and keeps the merged snapshots fresh on an interval.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jellydator/ttlcache/v3"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"go-sla-monitor-ui/internal/connectors/monitoring"
	"go-sla-monitor-ui/internal/connectors/shipping"
	"go-sla-monitor-ui/internal/connectors/slamaster"
	"go-sla-monitor-ui/internal/report"
	"go-sla-monitor-ui/internal/sla"
	"go-sla-monitor-ui/internal/table"
)

// Options tunes cache lifetimes and the background refresh cadence.
type Options struct {
	RefreshInterval time.Duration
	IndexTTL        time.Duration
	SnapshotTTL     time.Duration
}

// Orchestrator owns the fetch-merge pipeline. Table state stays with the
// HTTP layer; this type only deals in merged record sets.
type Orchestrator struct {
	monitoring *monitoring.Client
	master     *slamaster.Client
	shipping   *shipping.Client
	clock      clockwork.Clock
	log        zerolog.Logger
	opts       Options

	indexCache *ttlcache.Cache[string, sla.Index]
	snapCache  *ttlcache.Cache[string, any]

	mu       sync.RWMutex
	lastDown *DownSnapshot
	lastUp   *UpSnapshot
}

// DownSnapshot is a merged, display-ready down-site record set.
type DownSnapshot struct {
	Records    []sla.DownRecord `json:"records"`
	Pagination sla.Pagination   `json:"pagination"`
	Summary    sla.Summary      `json:"summary"`
	Mode       table.Mode       `json:"mode"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Stale      bool             `json:"stale,omitempty"`
	FetchError string           `json:"fetchError,omitempty"`
}

// UpSnapshot is a merged, display-ready up-site record set.
type UpSnapshot struct {
	Records    []sla.SiteRecord `json:"records"`
	Pagination sla.Pagination   `json:"pagination"`
	Summary    sla.Summary      `json:"summary"`
	Mode       table.Mode       `json:"mode"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Stale      bool             `json:"stale,omitempty"`
	FetchError string           `json:"fetchError,omitempty"`
}

// ShippingSnapshot is a merged shipping or retur record set.
type ShippingSnapshot struct {
	Records    []sla.ShippingRecord `json:"records"`
	Pagination sla.Pagination       `json:"pagination"`
	Mode       table.Mode           `json:"mode"`
	FetchedAt  time.Time            `json:"fetchedAt"`
}

func New(mon *monitoring.Client, master *slamaster.Client, ship *shipping.Client, clock clockwork.Clock, log zerolog.Logger, opts Options) *Orchestrator {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	if opts.IndexTTL <= 0 {
		opts.IndexTTL = 15 * time.Minute
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = opts.RefreshInterval
	}

	return &Orchestrator{
		monitoring: mon,
		master:     master,
		shipping:   ship,
		clock:      clock,
		log:        log,
		opts:       opts,
		indexCache: ttlcache.New(
			ttlcache.WithTTL[string, sla.Index](opts.IndexTTL),
		),
		snapCache: ttlcache.New(
			ttlcache.WithTTL[string, any](opts.SnapshotTTL),
		),
	}
}

func (o *Orchestrator) Enabled() bool {
	return o != nil && o.monitoring.Enabled()
}

// Index returns the SLA master lookup for a reporting period, building it
// at most once per period within the cache TTL. The returned index is
// shared read-only; it is rebuilt whole, never patched.
func (o *Orchestrator) Index(ctx context.Context, from, to time.Time) sla.Index {
	if o.master == nil || !o.master.Enabled() {
		return sla.Index{}
	}

	key := from.Format("2006-01-02") + "|" + to.Format("2006-01-02")
	if item := o.indexCache.Get(key); item != nil {
		return item.Value()
	}

	idx := o.master.BuildIndex(ctx, from, to)
	o.indexCache.Set(key, idx, ttlcache.DefaultTTL)
	return idx
}

// SitesDown returns the merged down-site snapshot for a query. On fetch
// failure the last good snapshot is returned marked stale, together with
// the error; an already-rendered table is never blanked.
func (o *Orchestrator) SitesDown(ctx context.Context, q monitoring.Query) (*DownSnapshot, error) {
	idx := o.Index(ctx, q.From, q.To)

	key := fmt.Sprintf("down|%s|%d|%d|%t|%s|%s|%d",
		q.Filter, q.Page, q.Limit, q.All,
		q.From.Format("2006-01-02"), q.To.Format("2006-01-02"), len(idx))
	if item := o.snapCache.Get(key); item != nil {
		return item.Value().(*DownSnapshot), nil
	}

	var page *monitoring.DownPage
	err := o.retry(ctx, func() error {
		var ferr error
		page, ferr = o.monitoring.SitesDown(ctx, q)
		return ferr
	})
	if err != nil {
		o.log.Error().Err(err).Msg("down-site fetch failed, serving stale snapshot")
		o.mu.RLock()
		last := o.lastDown
		o.mu.RUnlock()
		if last == nil {
			return nil, err
		}
		stale := *last
		stale.Stale = true
		stale.FetchError = err.Error()
		return &stale, err
	}

	records := make([]sla.DownRecord, 0, len(page.Records))
	for _, rec := range page.Records {
		records = append(records, sla.MergeDown(rec, idx, o.clock))
	}

	snap := &DownSnapshot{
		Records:    records,
		Pagination: page.Pagination,
		Summary:    sla.NormalizeSummary(page.Summary),
		Mode:       mode(q.All),
		FetchedAt:  o.clock.Now().UTC(),
	}
	o.snapCache.Set(key, snap, ttlcache.DefaultTTL)
	o.mu.Lock()
	o.lastDown = snap
	o.mu.Unlock()
	return snap, nil
}

// SitesUp returns the merged up-site snapshot for a query, with the same
// stale-while-error behavior as SitesDown.
func (o *Orchestrator) SitesUp(ctx context.Context, q monitoring.Query) (*UpSnapshot, error) {
	idx := o.Index(ctx, q.From, q.To)

	key := fmt.Sprintf("up|%s|%d|%d|%t|%s|%s|%d",
		q.Filter, q.Page, q.Limit, q.All,
		q.From.Format("2006-01-02"), q.To.Format("2006-01-02"), len(idx))
	if item := o.snapCache.Get(key); item != nil {
		return item.Value().(*UpSnapshot), nil
	}

	var page *monitoring.UpPage
	err := o.retry(ctx, func() error {
		var ferr error
		page, ferr = o.monitoring.SitesUp(ctx, q)
		return ferr
	})
	if err != nil {
		o.log.Error().Err(err).Msg("up-site fetch failed, serving stale snapshot")
		o.mu.RLock()
		last := o.lastUp
		o.mu.RUnlock()
		if last == nil {
			return nil, err
		}
		stale := *last
		stale.Stale = true
		stale.FetchError = err.Error()
		return &stale, err
	}

	records := make([]sla.SiteRecord, 0, len(page.Records))
	for _, rec := range page.Records {
		records = append(records, sla.MergeSite(rec, idx))
	}

	snap := &UpSnapshot{
		Records:    records,
		Pagination: page.Pagination,
		Summary:    sla.NormalizeSummary(page.Summary),
		Mode:       mode(q.All),
		FetchedAt:  o.clock.Now().UTC(),
	}
	o.snapCache.Set(key, snap, ttlcache.DefaultTTL)
	o.mu.Lock()
	o.lastUp = snap
	o.mu.Unlock()
	return snap, nil
}

// ShippingTable returns a merged shipping or retur snapshot. retur=true
// selects the returns list.
func (o *Orchestrator) ShippingTable(ctx context.Context, q shipping.Query, from, to time.Time, retur bool) (*ShippingSnapshot, error) {
	if o.shipping == nil || !o.shipping.Enabled() {
		return nil, fmt.Errorf("shipping integration disabled")
	}

	idx := o.Index(ctx, from, to)

	var (
		page *shipping.Page
		err  error
	)
	if retur {
		page, err = o.shipping.Retur(ctx, q)
	} else {
		page, err = o.shipping.Shipping(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	records := make([]sla.ShippingRecord, 0, len(page.Records))
	for _, rec := range page.Records {
		records = append(records, sla.MergeShipping(rec, idx))
	}

	return &ShippingSnapshot{
		Records:    records,
		Pagination: page.Pagination,
		Mode:       mode(q.All),
		FetchedAt:  o.clock.Now().UTC(),
	}, nil
}

// MasterRecords flattens the auxiliary index into rows for the SLA master
// table.
func (o *Orchestrator) MasterRecords(ctx context.Context, from, to time.Time) []sla.AuxiliaryRecord {
	idx := o.Index(ctx, from, to)
	out := make([]sla.AuxiliaryRecord, 0, len(idx))
	for _, rec := range idx {
		out = append(out, rec)
	}
	return out
}

// MonthlyReport fetches the pre-aggregated monthly report object.
func (o *Orchestrator) MonthlyReport(ctx context.Context, month time.Time) (*report.Data, error) {
	var data *report.Data
	err := o.retry(ctx, func() error {
		var ferr error
		data, ferr = o.monitoring.MonthlyReport(ctx, month)
		return ferr
	})
	return data, err
}

// Sync posts the upstream synchronization action, then drops every cached
// snapshot and re-primes the default views. A failed sync surfaces as-is
// and is never retried automatically.
func (o *Orchestrator) Sync(ctx context.Context) (*sla.SyncResult, error) {
	res, err := o.monitoring.Sync(ctx)
	if err != nil {
		return nil, err
	}

	o.snapCache.DeleteAll()
	from, to := o.defaultRange()
	_, _ = o.SitesDown(ctx, monitoring.Query{All: true, From: from, To: to})
	_, _ = o.SitesUp(ctx, monitoring.Query{All: true, From: from, To: to})
	return res, nil
}

// Run refreshes the default snapshots on the configured interval until
// the context is cancelled. The auxiliary index is deliberately left to
// its own TTL to bound request volume against the master API.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := o.clock.NewTicker(o.opts.RefreshInterval)
	defer ticker.Stop()

	o.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			o.refresh(ctx)
		}
	}
}

func (o *Orchestrator) refresh(ctx context.Context) {
	o.snapCache.DeleteAll()
	from, to := o.defaultRange()
	if _, err := o.SitesDown(ctx, monitoring.Query{All: true, From: from, To: to}); err != nil {
		o.log.Warn().Err(err).Msg("scheduled down-site refresh failed")
	}
	if _, err := o.SitesUp(ctx, monitoring.Query{All: true, From: from, To: to}); err != nil {
		o.log.Warn().Err(err).Msg("scheduled up-site refresh failed")
	}
}

func (o *Orchestrator) defaultRange() (time.Time, time.Time) {
	now := o.clock.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, now
}

// DefaultRange exposes the current reporting period used by scheduled
// refreshes, so handlers can fall back to it.
func (o *Orchestrator) DefaultRange() (time.Time, time.Time) {
	return o.defaultRange()
}

func (o *Orchestrator) retry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(op, backoff.WithMaxRetries(bo, 2))
}

func mode(fetchedAll bool) table.Mode {
	if fetchedAll {
		return table.ModeClient
	}
	return table.ModeServer
}
