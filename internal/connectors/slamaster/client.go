// Package slamaster pulls the SLA master dataset and condenses it into an
// in-memory lookup keyed by site identifier. All shape normalization of
// the upstream payload happens here; nothing duck-typed leaves this
// package.
package slamaster

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"go-sla-monitor-ui/internal/sla"
)

const defaultPageSize = 100

// Client reads the SLA master REST API.
type Client struct {
	endpoint string
	http     *resty.Client
	pageSize int
	log      zerolog.Logger
}

func NewClient(endpoint string, timeout time.Duration, pageSize int, log zerolog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		http:     resty.New().SetTimeout(timeout),
		pageSize: pageSize,
		log:      log,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

type pageResponse struct {
	Data struct {
		Sites      []map[string]any `json:"sites"`
		Pagination sla.Pagination   `json:"pagination"`
	} `json:"data"`
}

// BuildIndex pages through the master dataset for the date range and
// returns the lookup. Pages are requested strictly one after another; a
// failed page stops the walk and the partial index is returned as-is.
// Callers treat lookup misses as "fields stay unset", so an incomplete
// index degrades display rather than failing it.
func (c *Client) BuildIndex(ctx context.Context, from, to time.Time) sla.Index {
	idx := sla.Index{}
	if !c.Enabled() {
		return idx
	}

	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, from, to, page)
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Int("indexed", len(idx)).
				Msg("sla master page fetch failed, keeping partial index")
			return idx
		}

		for _, raw := range resp.Data.Sites {
			rec, ok := normalizeSite(raw)
			if !ok {
				continue
			}
			// Last write wins if an identifier repeats across pages.
			idx[rec.SiteID] = rec
		}

		if resp.Data.Pagination.TotalPages <= 0 || page >= resp.Data.Pagination.TotalPages {
			return idx
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, from, to time.Time, page int) (*pageResponse, error) {
	out := &pageResponse{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(c.pageSize),
			"from":  from.Format("2006-01-02"),
			"to":    to.Format("2006-01-02"),
		}).
		SetResult(out).
		Get(c.endpoint + "/sla/sites")
	if err != nil {
		return nil, fmt.Errorf("sla master page %d: %w", page, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sla master page %d: status=%d body=%s",
			page, resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return out, nil
}

// Probe checks upstream reachability for the services-status view.
func (c *Client) Probe(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("sla master integration disabled")
	}
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(c.endpoint + "/health")
	ping := time.Since(start).Milliseconds()
	if err != nil {
		return ping, err
	}
	if resp.IsError() {
		return ping, fmt.Errorf("sla master status=%d", resp.StatusCode())
	}
	return ping, nil
}

// normalizeSite turns one duck-typed upstream site into the canonical
// record. The identifier is resolved from the known field-name variants,
// first non-empty wins; a site without any identifier is skipped.
func normalizeSite(raw map[string]any) (sla.AuxiliaryRecord, bool) {
	id := firstNonEmpty(
		asString(raw["siteId"]),
		asString(raw["site_id"]),
		asString(raw["name"]),
		asString(raw["site_name"]),
	)
	if id == "" {
		return sla.AuxiliaryRecord{}, false
	}

	rec := sla.AuxiliaryRecord{SiteID: id}
	if siteSla, ok := raw["siteSla"].(map[string]any); ok {
		if v, ok := siteSla["slaAverage"]; ok && v != nil {
			avg := asFloat(v)
			rec.SlaAverage = &avg
		}
		rec.StatusSP = sla.SPStatus(strings.TrimSpace(asString(siteSla["statusSP"])))
	}
	rec.Problem = sla.NormalizeProblems(raw["problem"])
	return rec, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
