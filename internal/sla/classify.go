package sla

// SLA percentage cut points, inclusive lower bounds. A second, stricter
// table (99.5/95.5/90) circulated in older report sheets; operations
// confirmed this one as the canonical contract.
const (
	ThresholdMeetSLA = 95.5
	ThresholdFair    = 90.0
	ThresholdBad     = 80.0
)

const secondsPerDay = 86400

// ClassifySLA maps an SLA percentage to its compliance label. A missing
// value counts as Very Bad.
func ClassifySLA(sla *float64) Status {
	switch {
	case sla == nil:
		return StatusVeryBad
	case *sla >= ThresholdMeetSLA:
		return StatusMeetSLA
	case *sla >= ThresholdFair:
		return StatusFair
	case *sla >= ThresholdBad:
		return StatusBad
	default:
		return StatusVeryBad
	}
}

// ClassifyDowntime maps elapsed outage seconds to a severity. Exactly 30
// days is still Warning; Critical starts strictly past it.
func ClassifyDowntime(seconds int64) DowntimeStatus {
	switch {
	case seconds > 30*secondsPerDay:
		return DowntimeCritical
	case seconds > 7*secondsPerDay:
		return DowntimeWarning
	default:
		return DowntimeNormal
	}
}

var statusRank = map[Status]int{
	StatusMeetSLA: 4,
	StatusFair:    3,
	StatusBad:     2,
	StatusVeryBad: 1,
}

var spRank = map[SPStatus]int{
	SPPotensi: 2,
	SPClear:   1,
}

var downtimeRank = map[DowntimeStatus]int{
	DowntimeCritical: 3,
	DowntimeWarning:  2,
	DowntimeNormal:   1,
}

// RankStatus orders SLA labels for sorting. Unset labels rank 0 so the
// table engine can push them to the end.
func RankStatus(s Status) int { return statusRank[s] }

// RankSP orders penalty labels for sorting.
func RankSP(s SPStatus) int { return spRank[s] }

// RankDowntime orders outage severities for sorting.
func RankDowntime(s DowntimeStatus) int { return downtimeRank[s] }
