// Package report renders the monthly SLA summary text. Rendering is pure
// templating over the pre-aggregated report object; the only logic here
// is grouping and number formatting.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"go-sla-monitor-ui/internal/sla"
)

// Data is the pre-fetched monthly report object.
type Data struct {
	Month   string         `json:"month"`
	Summary SummaryDeltas  `json:"summary"`
	Battery []BatteryStat  `json:"batteryVersions"`
	Potensi []PotensiSite  `json:"potensiSp"`
	Gamas   []GamasEvent   `json:"gamas"`
}

// SummaryDeltas carries the month-over-month headline numbers.
type SummaryDeltas struct {
	TotalSites     int     `json:"totalSites"`
	SitesDown      int     `json:"sitesDown"`
	SitesUp        int     `json:"sitesUp"`
	SlaAverage     float64 `json:"slaAverage"`
	PrevSlaAverage float64 `json:"prevSlaAverage"`
}

// BatteryStat is the per-battery-version breakdown row.
type BatteryStat struct {
	Version    string  `json:"version"`
	Sites      int     `json:"sites"`
	SlaAverage float64 `json:"slaAverage"`
}

// PotensiSite is one site at risk of a service penalty.
type PotensiSite struct {
	SiteID     string  `json:"siteId"`
	SiteName   string  `json:"siteName"`
	Category   string  `json:"category"`
	SlaAverage float64 `json:"slaAverage"`
}

// GamasEvent is one historical GAMAS incident.
type GamasEvent struct {
	Date            string `json:"date"`
	Description     string `json:"description"`
	DurationSeconds int64  `json:"durationSeconds"`
}

const separator = "================================"

// Render assembles the monthly summary text.
func Render(d Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Laporan SLA Bulanan %s\n", d.Month)
	b.WriteString(separator + "\n")

	delta := d.Summary.SlaAverage - d.Summary.PrevSlaAverage
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	fmt.Fprintf(&b, "Total site: %d (down %d, up %d)\n",
		d.Summary.TotalSites, d.Summary.SitesDown, d.Summary.SitesUp)
	fmt.Fprintf(&b, "Rata-rata SLA: %.2f%% (%s%.2f%% dari bulan lalu)\n",
		d.Summary.SlaAverage, sign, delta)

	if len(d.Battery) > 0 {
		b.WriteString(separator + "\n")
		b.WriteString("SLA per versi baterai:\n")
		for _, bat := range d.Battery {
			fmt.Fprintf(&b, "- %s: %d site, rata-rata %.2f%%\n",
				bat.Version, bat.Sites, bat.SlaAverage)
		}
	}

	if len(d.Potensi) > 0 {
		b.WriteString(separator + "\n")
		b.WriteString("Site Potensi SP:\n")
		groups := lo.GroupBy(d.Potensi, func(s PotensiSite) string {
			return s.Category
		})
		categories := lo.Keys(groups)
		sort.Strings(categories)
		for _, cat := range categories {
			name := cat
			if name == "" {
				name = "Lainnya"
			}
			fmt.Fprintf(&b, "%s:\n", name)
			for _, site := range groups[cat] {
				fmt.Fprintf(&b, "- %s (%s) SLA %.2f%%\n",
					site.SiteName, site.SiteID, site.SlaAverage)
			}
		}
	}

	if len(d.Gamas) > 0 {
		b.WriteString(separator + "\n")
		b.WriteString("Riwayat GAMAS:\n")
		for _, g := range d.Gamas {
			fmt.Fprintf(&b, "- %s: %s (%s)\n",
				g.Date, g.Description, sla.FormatDurationDays(g.DurationSeconds))
		}
	}

	return b.String()
}
