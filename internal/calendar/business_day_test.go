package calendar

import "testing"

func TestIsBusinessDay(t *testing.T) {
	holidays := NewHolidaySet("2024-07-04")
	tests := []struct {
		date string
		want bool
	}{
		{"2024-07-03", true},  // Wednesday
		{"2024-07-04", false}, // holiday
		{"2024-07-06", false}, // Saturday
		{"2024-07-07", false}, // Sunday
		{"2024-07-08", true},  // Monday
	}
	for _, tt := range tests {
		if got := IsBusinessDay(day(tt.date), holidays); got != tt.want {
			t.Errorf("IsBusinessDay(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestAdjustToBusinessDay(t *testing.T) {
	holidays := NewHolidaySet(
		"2024-01-15", // Monday
		"2025-07-04", // Friday
		"2024-12-25", // Wednesday
		"2024-09-02", // Monday
	)

	tests := []struct {
		name string
		in   string
		dir  Direction
		want string
	}{
		{name: "business day untouched forward", in: "2024-01-10", dir: Forward, want: "2024-01-10"},
		{name: "business day untouched backward", in: "2024-01-10", dir: Backward, want: "2024-01-10"},
		{name: "saturday forward to monday", in: "2024-01-06", dir: Forward, want: "2024-01-08"},
		{name: "sunday forward to monday", in: "2024-01-07", dir: Forward, want: "2024-01-08"},
		{name: "saturday backward to friday", in: "2024-01-20", dir: Backward, want: "2024-01-19"},
		{name: "sunday backward to friday", in: "2024-01-21", dir: Backward, want: "2024-01-19"},
		{name: "weekend before monday holiday forward", in: "2024-01-13", dir: Forward, want: "2024-01-16"},
		{name: "monday holiday backward", in: "2024-01-15", dir: Backward, want: "2024-01-12"},
		{name: "friday holiday forward rechecks weekend", in: "2025-07-04", dir: Forward, want: "2025-07-07"},
		{name: "friday holiday backward", in: "2025-07-04", dir: Backward, want: "2025-07-03"},
		{name: "midweek holiday forward", in: "2024-12-25", dir: Forward, want: "2024-12-26"},
		{name: "labor day weekend backward", in: "2024-09-02", dir: Backward, want: "2024-08-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustToBusinessDay(day(tt.in), tt.dir, holidays)
			if ISODate(got) != tt.want {
				t.Errorf("AdjustToBusinessDay(%s, %s) = %s, want %s", tt.in, tt.dir, ISODate(got), tt.want)
			}
		})
	}
}

func TestAdjustToBusinessDayIdempotent(t *testing.T) {
	holidays := NewHolidaySet("2024-01-01", "2024-01-15", "2024-02-19", "2024-05-27", "2024-07-04")
	start := day("2024-01-01")
	for i := 0; i < 200; i++ {
		d := start.AddDate(0, 0, i)
		for _, dir := range []Direction{Forward, Backward} {
			once := AdjustToBusinessDay(d, dir, holidays)
			twice := AdjustToBusinessDay(once, dir, holidays)
			if !once.Equal(twice) {
				t.Fatalf("%s %s: once=%s twice=%s", ISODate(d), dir, ISODate(once), ISODate(twice))
			}
			if !IsBusinessDay(once, holidays) {
				t.Fatalf("%s %s: result %s is not a business day", ISODate(d), dir, ISODate(once))
			}
		}
	}
}

func TestNilHolidaySet(t *testing.T) {
	var none HolidaySet
	if none.Has("2024-01-01") {
		t.Fatal("nil set reported a holiday")
	}
	if got := AdjustToBusinessDay(day("2024-01-06"), Forward, none); ISODate(got) != "2024-01-08" {
		t.Errorf("AdjustToBusinessDay with nil set = %s, want 2024-01-08", ISODate(got))
	}
}
