package forecast

import (
	"sort"

	"budget_calendar/internal/domain/projection"
)

// Discrepancy is a bill expected on a date but not stored there, or the reverse.
type Discrepancy struct {
	Date     string
	BillID   string
	BillName string
}

// ValidationReport compares stored projections with a fresh computation.
type ValidationReport struct {
	DaysChecked int
	MissingDays []string
	Missing     []Discrepancy // expected, not stored
	Unexpected  []Discrepancy // stored, not expected
}

// Valid reports whether stored rows match the expected schedule.
func (r ValidationReport) Valid() bool {
	return len(r.MissingDays) == 0 && len(r.Missing) == 0 && len(r.Unexpected) == 0
}

// MissingBillNames returns the distinct names of missing bills, sorted.
func (r ValidationReport) MissingBillNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, d := range r.Missing {
		if _, ok := seen[d.BillName]; ok {
			continue
		}
		seen[d.BillName] = struct{}{}
		names = append(names, d.BillName)
	}
	sort.Strings(names)
	return names
}

// Validate checks every expected day against the stored rows by bill id.
// Stored rows outside the expected dates are ignored.
func Validate(stored, expected []projection.Projection) ValidationReport {
	byDate := make(map[string]projection.Projection, len(stored))
	for _, p := range stored {
		byDate[p.ProjDate] = p
	}

	var report ValidationReport
	for _, want := range expected {
		report.DaysChecked++
		got, ok := byDate[want.ProjDate]
		if !ok {
			report.MissingDays = append(report.MissingDays, want.ProjDate)
			continue
		}

		gotIDs := make(map[string]struct{}, len(got.Bills))
		for _, b := range got.Bills {
			gotIDs[b.ID] = struct{}{}
		}
		wantIDs := make(map[string]struct{}, len(want.Bills))
		for _, b := range want.Bills {
			wantIDs[b.ID] = struct{}{}
			if _, ok := gotIDs[b.ID]; !ok {
				report.Missing = append(report.Missing, Discrepancy{Date: want.ProjDate, BillID: b.ID, BillName: b.Name})
			}
		}
		for _, b := range got.Bills {
			if _, ok := wantIDs[b.ID]; !ok {
				report.Unexpected = append(report.Unexpected, Discrepancy{Date: want.ProjDate, BillID: b.ID, BillName: b.Name})
			}
		}
	}
	return report
}
