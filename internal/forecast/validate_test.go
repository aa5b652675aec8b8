package forecast

import (
	"testing"

	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
)

func TestValidate(t *testing.T) {
	rent := bill.Bill{ID: "rent", Name: "Rent"}
	phone := bill.Bill{ID: "phone", Name: "Phone"}

	expected := []projection.Projection{
		{ProjDate: "2024-01-01", Bills: []bill.Bill{}},
		{ProjDate: "2024-01-02", Bills: []bill.Bill{rent}},
		{ProjDate: "2024-01-03", Bills: []bill.Bill{phone}},
		{ProjDate: "2024-01-04", Bills: []bill.Bill{}},
	}

	tests := []struct {
		name           string
		stored         []projection.Projection
		wantValid      bool
		wantMissing    int
		wantUnexpected int
		wantDays       int
	}{
		{name: "in sync", stored: expected, wantValid: true},
		{
			name: "bill dropped and moved",
			stored: []projection.Projection{
				{ProjDate: "2024-01-01", Bills: []bill.Bill{}},
				{ProjDate: "2024-01-02", Bills: []bill.Bill{}},
				{ProjDate: "2024-01-03", Bills: []bill.Bill{phone, rent}},
				{ProjDate: "2024-01-04", Bills: []bill.Bill{}},
			},
			wantMissing:    1,
			wantUnexpected: 1,
		},
		{
			name:     "day missing",
			stored:   expected[:3],
			wantDays: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.stored, expected)
			if report.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", report.Valid(), tt.wantValid)
			}
			if report.DaysChecked != len(expected) {
				t.Errorf("DaysChecked = %d, want %d", report.DaysChecked, len(expected))
			}
			if len(report.Missing) != tt.wantMissing {
				t.Errorf("Missing = %+v", report.Missing)
			}
			if len(report.Unexpected) != tt.wantUnexpected {
				t.Errorf("Unexpected = %+v", report.Unexpected)
			}
			if len(report.MissingDays) != tt.wantDays {
				t.Errorf("MissingDays = %v", report.MissingDays)
			}
		})
	}
}

func TestValidationReportMissingBillNames(t *testing.T) {
	r := ValidationReport{Missing: []Discrepancy{
		{Date: "2024-01-02", BillName: "Rent"},
		{Date: "2024-02-02", BillName: "Rent"},
		{Date: "2024-01-03", BillName: "Phone"},
	}}
	got := r.MissingBillNames()
	if len(got) != 2 || got[0] != "Phone" || got[1] != "Rent" {
		t.Errorf("MissingBillNames() = %v", got)
	}
}
