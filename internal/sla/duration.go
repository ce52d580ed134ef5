package sla

import (
	"fmt"
	"time"
)

// FormatDurationDays renders elapsed seconds as a whole-day count.
// Sub-day precision is discarded on purpose; the dashboards only track
// outages at day granularity.
func FormatDurationDays(seconds int64) string {
	days := seconds / secondsPerDay
	if days < 1 {
		return "0 hari"
	}
	return fmt.Sprintf("%d hari", days)
}

// FormatRelative renders how long ago t was, in Indonesian. A future or
// equal timestamp renders as "sekarang".
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d <= 0 {
		return "sekarang"
	}

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d detik yang lalu", int64(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d menit yang lalu", int64(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d jam yang lalu", int64(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d hari yang lalu", int64(d.Hours())/24)
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%d bulan yang lalu", int64(d.Hours())/(24*30))
	default:
		return fmt.Sprintf("%d tahun yang lalu", int64(d.Hours())/(24*365))
	}
}
