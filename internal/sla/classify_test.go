package sla

import "testing"

func fp(v float64) *float64 { return &v }

func TestClassifySLA(t *testing.T) {
	cases := []struct {
		name string
		in   *float64
		want Status
	}{
		{"nil is very bad", nil, StatusVeryBad},
		{"perfect", fp(100), StatusMeetSLA},
		{"meet boundary inclusive", fp(95.5), StatusMeetSLA},
		{"just under meet", fp(95.49), StatusFair},
		{"fair boundary inclusive", fp(90), StatusFair},
		{"just under fair", fp(89.99), StatusBad},
		{"bad boundary inclusive", fp(80), StatusBad},
		{"just under bad", fp(79.99), StatusVeryBad},
		{"zero", fp(0), StatusVeryBad},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySLA(tc.in); got != tc.want {
				t.Fatalf("ClassifySLA(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassifyDowntime(t *testing.T) {
	cases := []struct {
		name    string
		seconds int64
		want    DowntimeStatus
	}{
		{"zero", 0, DowntimeNormal},
		{"six days", 6 * secondsPerDay, DowntimeNormal},
		{"seven days exactly", 7 * secondsPerDay, DowntimeNormal},
		{"just past seven days", 7*secondsPerDay + 1, DowntimeWarning},
		{"ten days", 10 * secondsPerDay, DowntimeWarning},
		{"thirty days exactly", 30 * secondsPerDay, DowntimeWarning},
		{"just past thirty days", 30*secondsPerDay + 1, DowntimeCritical},
		{"ninety days", 90 * secondsPerDay, DowntimeCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyDowntime(tc.seconds); got != tc.want {
				t.Fatalf("ClassifyDowntime(%d) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestRanksOrderWorstToBest(t *testing.T) {
	if !(RankStatus(StatusMeetSLA) > RankStatus(StatusFair) &&
		RankStatus(StatusFair) > RankStatus(StatusBad) &&
		RankStatus(StatusBad) > RankStatus(StatusVeryBad)) {
		t.Fatalf("status ranks out of order")
	}
	if RankStatus("") != 0 {
		t.Fatalf("unset status must rank 0, got %d", RankStatus(""))
	}
	if !(RankSP(SPPotensi) > RankSP(SPClear)) {
		t.Fatalf("sp ranks out of order")
	}
	if RankSP("") != 0 {
		t.Fatalf("unset sp must rank 0")
	}
	if !(RankDowntime(DowntimeCritical) > RankDowntime(DowntimeWarning) &&
		RankDowntime(DowntimeWarning) > RankDowntime(DowntimeNormal)) {
		t.Fatalf("downtime ranks out of order")
	}
}
