package sla

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
)

// Enrich resolves one site against the index. A miss returns a zero
// Enrichment; that is the normal degraded path when the index build was
// cut short, never an error.
func (idx Index) Enrich(siteID string) Enrichment {
	aux, ok := idx[siteID]
	if !ok {
		return Enrichment{}
	}

	out := Enrichment{
		StatusSLA: ClassifySLA(aux.SlaAverage),
		StatusSP:  aux.StatusSP,
	}
	if aux.SlaAverage != nil {
		v := *aux.SlaAverage
		out.SlaAvg = &v
	}
	if len(aux.Problem) > 0 {
		out.Problem = append([]string(nil), aux.Problem...)
	}
	return out
}

// MergeSite joins one site row against the index without mutating either.
func MergeSite(rec SiteRecord, idx Index) SiteRecord {
	rec.Enrichment = idx.Enrich(rec.SiteID)
	return rec
}

// MergeDown joins a down-site row and recomputes its live downtime. The
// upstream downSeconds is discarded: display can be arbitrarily stale
// relative to fetch time, so elapsed time is always taken from the clock.
func MergeDown(rec DownRecord, idx Index, clock clockwork.Clock) DownRecord {
	rec.SiteRecord = MergeSite(rec.SiteRecord, idx)

	if rec.DownSince != nil {
		now := clock.Now()
		seconds := int64(now.Sub(*rec.DownSince).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		rec.DownSeconds = seconds
		rec.Status = ClassifyDowntime(seconds)
		rec.DownFor = FormatDurationDays(seconds)
		rec.DownAgo = FormatRelative(*rec.DownSince, now)
	}
	return rec
}

// MergeShipping joins one shipping/retur row against the index.
func MergeShipping(rec ShippingRecord, idx Index) ShippingRecord {
	rec.Enrichment = idx.Enrich(rec.SiteID)
	return rec
}

// NormalizeSummary derives the percentage fields when the upstream omits
// them, rounded to two decimals. Present values pass through untouched.
func NormalizeSummary(s Summary) Summary {
	if s.TotalSites <= 0 {
		return s
	}
	if s.PercentageSitesDown == nil && s.TotalSitesDown != nil {
		v := roundPct(float64(*s.TotalSitesDown) / float64(s.TotalSites) * 100)
		s.PercentageSitesDown = &v
	}
	if s.PercentageSitesUp == nil && s.TotalSitesUp != nil {
		v := roundPct(float64(*s.TotalSitesUp) / float64(s.TotalSites) * 100)
		s.PercentageSitesUp = &v
	}
	return s
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeProblems flattens the upstream problem field into a list of
// non-empty strings. The field arrives as a bare string, a string list,
// or a list of objects carrying a "problem" key; anything empty or null
// is dropped.
func NormalizeProblems(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		out := lo.Filter(v, func(s string, _ int) bool {
			return strings.TrimSpace(s) != ""
		})
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s := problemString(item)
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		if s := strings.TrimSpace(problemString(raw)); s != "" {
			return []string{s}
		}
		return nil
	}
}

func problemString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]any:
		s, _ := x["problem"].(string)
		return s
	default:
		return fmt.Sprint(x)
	}
}
