// Package shipping reads the spare-part logistics REST API (shipping and
// retur lists).
package shipping

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-resty/resty/v2"

	"go-sla-monitor-ui/internal/sla"
)

// Client reads the shipping REST API.
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

// Query selects one list fetch, mirroring the monitoring connector.
type Query struct {
	Filter string
	Page   int
	Limit  int
	All    bool
}

type recordWire struct {
	ID         int64  `json:"id"`
	SiteID     string `json:"siteId"`
	SiteName   string `json:"siteName"`
	TrackingNo string `json:"trackingNo"`
	Item       string `json:"item"`
	Qty        int    `json:"qty"`
	Status     string `json:"status"`
	ShippedAt  string `json:"shippedAt"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type listWire struct {
	Data       []recordWire   `json:"data"`
	Pagination sla.Pagination `json:"pagination"`
}

// Page is one fetched (pre-merge) page of shipping or retur rows.
type Page struct {
	Records    []sla.ShippingRecord
	Pagination sla.Pagination
}

// Shipping fetches outbound spare-part shipments.
func (c *Client) Shipping(ctx context.Context, q Query) (*Page, error) {
	return c.list(ctx, "/shipping", q)
}

// Retur fetches inbound spare-part returns.
func (c *Client) Retur(ctx context.Context, q Query) (*Page, error) {
	return c.list(ctx, "/retur", q)
}

func (c *Client) list(ctx context.Context, path string, q Query) (*Page, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("shipping integration disabled")
	}

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

	raw := &listWire{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(raw).
		Get(c.endpoint + path)
	if err != nil {
		return nil, fmt.Errorf("shipping %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shipping %s: status=%d body=%s",
			path, resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}

	out := &Page{
		Records:    make([]sla.ShippingRecord, 0, len(raw.Data)),
		Pagination: raw.Pagination,
	}
	for _, w := range raw.Data {
		out.Records = append(out.Records, sla.ShippingRecord{
			ID:         w.ID,
			SiteID:     strings.TrimSpace(w.SiteID),
			SiteName:   strings.TrimSpace(w.SiteName),
			TrackingNo: strings.TrimSpace(w.TrackingNo),
			Item:       strings.TrimSpace(w.Item),
			Qty:        w.Qty,
			ShipStatus: strings.TrimSpace(w.Status),
			ShippedAt:  parseTime(w.ShippedAt),
			CreatedAt:  parseTime(w.CreatedAt),
			UpdatedAt:  parseTime(w.UpdatedAt),
		})
	}
	return out, nil
}

// Probe checks upstream reachability for the services-status view.
func (c *Client) Probe(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("shipping integration disabled")
	}
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(c.endpoint + "/health")
	ping := time.Since(start).Milliseconds()
	if err != nil {
		return ping, err
	}
	if resp.IsError() {
		return ping, fmt.Errorf("shipping status=%d", resp.StatusCode())
	}
	return ping, nil
}

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
