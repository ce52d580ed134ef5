// Package monitoring reads the site monitoring REST API (down/up lists,
// the synchronization action, and monthly report data).
package monitoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-resty/resty/v2"

	"go-sla-monitor-ui/internal/report"
	"go-sla-monitor-ui/internal/sla"
)

// Client reads the monitoring REST API.
type Client struct {
	endpoint string
	http     *resty.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		http:     resty.New().SetTimeout(timeout),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Query selects one upstream list fetch. All=true asks for the complete
// matching set in one response; otherwise the server pages it.
type Query struct {
	Filter string
	Page   int
	Limit  int
	All    bool
	From   time.Time
	To     time.Time
}

func (q Query) params() map[string]string {
	params := map[string]string{}
	if strings.TrimSpace(q.Filter) != "" {
		params["q"] = strings.TrimSpace(q.Filter)
	}
	if q.All {
		params["limit"] = "0"
	} else {
		if q.Page > 0 {
			params["page"] = strconv.Itoa(q.Page)
		}
		if q.Limit > 0 {
			params["limit"] = strconv.Itoa(q.Limit)
		}
	}
	if !q.From.IsZero() {
		params["from"] = q.From.Format("2006-01-02")
	}
	if !q.To.IsZero() {
		params["to"] = q.To.Format("2006-01-02")
	}
	return params
}

type siteWire struct {
	ID          int64  `json:"id"`
	SiteID      string `json:"siteId"`
	SiteName    string `json:"siteName"`
	DownSince   string `json:"downSince"`
	DownSeconds int64  `json:"downSeconds"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type listWire struct {
	Data       []siteWire     `json:"data"`
	Pagination sla.Pagination `json:"pagination"`
	Summary    sla.Summary    `json:"summary"`
}

// DownPage is one fetched (pre-merge) page of down sites.
type DownPage struct {
	Records    []sla.DownRecord
	Pagination sla.Pagination
	Summary    sla.Summary
}

// UpPage is one fetched (pre-merge) page of up sites.
type UpPage struct {
	Records    []sla.SiteRecord
	Pagination sla.Pagination
	Summary    sla.Summary
}

// SitesDown fetches the down-site list.
func (c *Client) SitesDown(ctx context.Context, q Query) (*DownPage, error) {
	raw, err := c.list(ctx, "/sites/down", q)
	if err != nil {
		return nil, err
	}

	out := &DownPage{
		Records:    make([]sla.DownRecord, 0, len(raw.Data)),
		Pagination: raw.Pagination,
		Summary:    raw.Summary,
	}
	for _, w := range raw.Data {
		out.Records = append(out.Records, sla.DownRecord{
			SiteRecord:  w.site(),
			DownSince:   parseTime(w.DownSince),
			DownSeconds: w.DownSeconds,
		})
	}
	return out, nil
}

// SitesUp fetches the up-site list.
func (c *Client) SitesUp(ctx context.Context, q Query) (*UpPage, error) {
	raw, err := c.list(ctx, "/sites/up", q)
	if err != nil {
		return nil, err
	}

	out := &UpPage{
		Records:    make([]sla.SiteRecord, 0, len(raw.Data)),
		Pagination: raw.Pagination,
		Summary:    raw.Summary,
	}
	for _, w := range raw.Data {
		out.Records = append(out.Records, w.site())
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, path string, q Query) (*listWire, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("monitoring integration disabled")
	}

	out := &listWire{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(q.params()).
		SetResult(out).
		Get(c.endpoint + path)
	if err != nil {
		return nil, fmt.Errorf("monitoring %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("monitoring %s: status=%d body=%s",
			path, resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return out, nil
}

// Sync posts the upstream synchronization action. No body; the response
// carries row counts only.
func (c *Client) Sync(ctx context.Context) (*sla.SyncResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("monitoring integration disabled")
	}

	out := &sla.SyncResult{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Post(c.endpoint + "/sla/sync")
	if err != nil {
		return nil, fmt.Errorf("monitoring sync: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("monitoring sync: status=%d body=%s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return out, nil
}

// MonthlyReport fetches the pre-aggregated report object for one month.
func (c *Client) MonthlyReport(ctx context.Context, month time.Time) (*report.Data, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("monitoring integration disabled")
	}

	out := &report.Data{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("month", month.Format("2006-01")).
		SetResult(out).
		Get(c.endpoint + "/reports/monthly")
	if err != nil {
		return nil, fmt.Errorf("monitoring monthly report: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("monitoring monthly report: status=%d body=%s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return out, nil
}

// Probe checks upstream reachability for the services-status view.
func (c *Client) Probe(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("monitoring integration disabled")
	}
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(c.endpoint + "/health")
	ping := time.Since(start).Milliseconds()
	if err != nil {
		return ping, err
	}
	if resp.IsError() {
		return ping, fmt.Errorf("monitoring status=%d", resp.StatusCode())
	}
	return ping, nil
}

func (w siteWire) site() sla.SiteRecord {
	return sla.SiteRecord{
		ID:        w.ID,
		SiteID:    strings.TrimSpace(w.SiteID),
		SiteName:  strings.TrimSpace(w.SiteName),
		CreatedAt: parseTime(w.CreatedAt),
		UpdatedAt: parseTime(w.UpdatedAt),
	}
}

// parseTime accepts the assorted timestamp layouts the upstreams emit.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
