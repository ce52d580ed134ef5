package sla

import "time"

// Status is the four-level SLA compliance label shown on every table.
type Status string

const (
	StatusMeetSLA Status = "Meet SLA"
	StatusFair    Status = "Fair"
	StatusBad     Status = "Bad"
	StatusVeryBad Status = "Very Bad"
)

// SPStatus marks whether a site is trending toward a service penalty.
type SPStatus string

const (
	SPPotensi SPStatus = "Potensi SP"
	SPClear   SPStatus = "Clear SP"
)

// DowntimeStatus is the severity of an ongoing outage.
type DowntimeStatus string

const (
	DowntimeCritical DowntimeStatus = "Critical"
	DowntimeWarning  DowntimeStatus = "Warning"
	DowntimeNormal   DowntimeStatus = "Normal"
)

// Enrichment carries the fields that only ever originate from the SLA
// master dataset. They stay unset when the auxiliary lookup misses.
type Enrichment struct {
	SlaAvg    *float64 `json:"slaAvg,omitempty"`
	StatusSLA Status   `json:"statusSLA,omitempty"`
	StatusSP  SPStatus `json:"statusSP,omitempty"`
	Problem   []string `json:"problem,omitempty"`
}

// SiteRecord is the common shape of one monitored site row.
type SiteRecord struct {
	ID        int64      `json:"id"`
	SiteID    string     `json:"siteId"`
	SiteName  string     `json:"siteName"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	Enrichment
}

// DownRecord is a site currently down. DownSeconds and Status are
// recomputed against the wall clock on every merge, never trusted from
// the upstream payload.
type DownRecord struct {
	SiteRecord

	DownSince   *time.Time     `json:"downSince,omitempty"`
	DownSeconds int64          `json:"downSeconds"`
	DownFor     string         `json:"downFor,omitempty"`
	DownAgo     string         `json:"downAgo,omitempty"`
	Status      DowntimeStatus `json:"status,omitempty"`
}

// ShippingRecord is one spare-part shipping or retur row.
type ShippingRecord struct {
	ID         int64      `json:"id"`
	SiteID     string     `json:"siteId"`
	SiteName   string     `json:"siteName"`
	TrackingNo string     `json:"trackingNo,omitempty"`
	Item       string     `json:"item,omitempty"`
	Qty        int        `json:"qty,omitempty"`
	ShipStatus string     `json:"shipStatus,omitempty"`
	ShippedAt  *time.Time `json:"shippedAt,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`

	Enrichment
}

// AuxiliaryRecord is one normalized SLA master entry. The heterogeneous
// upstream shapes are resolved at ingestion; past this point every field
// has exactly one form.
type AuxiliaryRecord struct {
	SiteID     string   `json:"siteId"`
	SlaAverage *float64 `json:"slaAverage,omitempty"`
	StatusSP   SPStatus `json:"statusSP,omitempty"`
	Problem    []string `json:"problem,omitempty"`
}

// Index maps a site identifier to its most recently fetched master entry.
// An index is immutable once built; a new reporting period gets a new one.
type Index map[string]AuxiliaryRecord

// Pagination is the page envelope shared by every upstream list endpoint.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Summary is the aggregate block returned alongside monitoring lists.
type Summary struct {
	TotalSites          int      `json:"totalSites"`
	TotalSitesDown      *int     `json:"totalSitesDown,omitempty"`
	TotalSitesUp        *int     `json:"totalSitesUp,omitempty"`
	PercentageSitesDown *float64 `json:"percentageSitesDown,omitempty"`
	PercentageSitesUp   *float64 `json:"percentageSitesUp,omitempty"`
}

// SyncResult is the response of the upstream synchronization action.
type SyncResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
	Skipped  int `json:"skipped"`
}
