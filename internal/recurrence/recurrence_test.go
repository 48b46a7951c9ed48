package recurrence

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in       string
		freq     Frequency
		interval int
		count    int
	}{
		{"FREQ=MONTHLY;INTERVAL=2", Monthly, 2, 0},
		{"FREQ=DAILY", Daily, 1, 0},
		{"freq=weekly;interval=3", Weekly, 3, 0},
		{"RRULE:FREQ=YEARLY;INTERVAL=1", Yearly, 1, 0},
		{"FREQ=WEEKLY;COUNT=4", Weekly, 1, 4},
		{"MONTHLY", Monthly, 1, 0},
		{" weekly ", Weekly, 1, 0},
	} {
		r, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if r.Freq != tc.freq || r.Interval != tc.interval || r.Count != tc.count {
			t.Errorf("Parse(%q) = %+v, want freq=%s interval=%d count=%d", tc.in, r, tc.freq, tc.interval, tc.count)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"FREQ=SOMETIMES",
		"INTERVAL=2",
		"FREQ=DAILY;INTERVAL=0",
		"FREQ=DAILY;INTERVAL=-1",
		"FREQ=HOURLY",
		"every tuesday",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
	if _, err := Parse("   "); !errors.Is(err, ErrEmptyRule) {
		t.Errorf("Parse(blank) = %v, want ErrEmptyRule", err)
	}
}

func TestNext(t *testing.T) {
	for _, tc := range []struct {
		rule string
		base time.Time
		want time.Time
	}{
		{"FREQ=MONTHLY;INTERVAL=2", day(2024, time.January, 31), day(2024, time.March, 31)},
		{"FREQ=MONTHLY;INTERVAL=1", day(2024, time.January, 31), day(2024, time.February, 29)},
		{"FREQ=MONTHLY;INTERVAL=1", day(2023, time.January, 31), day(2023, time.February, 28)},
		{"FREQ=MONTHLY;INTERVAL=1", day(2024, time.December, 15), day(2025, time.January, 15)},
		{"WEEKLY", day(2024, time.March, 1), day(2024, time.March, 8)},
		{"FREQ=WEEKLY;INTERVAL=2", day(2024, time.December, 25), day(2025, time.January, 8)},
		{"FREQ=DAILY;INTERVAL=10", day(2024, time.February, 25), day(2024, time.March, 6)},
		{"FREQ=YEARLY", day(2024, time.February, 29), day(2025, time.February, 28)},
		{"FREQ=YEARLY;INTERVAL=4", day(2024, time.February, 29), day(2028, time.February, 29)},
	} {
		r, err := Parse(tc.rule)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.rule, err)
		}
		got, ok := r.Next(tc.base)
		if !ok {
			t.Errorf("%s from %s: no next occurrence", tc.rule, tc.base.Format(time.DateOnly))
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s from %s = %s, want %s", tc.rule, tc.base.Format(time.DateOnly),
				got.Format(time.DateOnly), tc.want.Format(time.DateOnly))
		}
	}
}

func TestNext_PreservesTimeOfDay(t *testing.T) {
	r, _ := Parse("FREQ=MONTHLY")
	base := time.Date(2024, 1, 31, 14, 30, 0, 0, time.UTC)
	got, ok := r.Next(base)
	want := time.Date(2024, 2, 29, 14, 30, 0, 0, time.UTC)
	if !ok || !got.Equal(want) {
		t.Errorf("got %v (ok=%v), want %v", got, ok, want)
	}
}

func TestNextFrom_Count(t *testing.T) {
	r, _ := Parse("FREQ=WEEKLY;COUNT=3")
	start := day(2024, time.April, 1)

	second, ok := r.NextFrom(start, 1)
	if !ok || !second.Equal(day(2024, time.April, 8)) {
		t.Fatalf("second = %v (ok=%v)", second, ok)
	}
	third, ok := r.NextFrom(second, 2)
	if !ok || !third.Equal(day(2024, time.April, 15)) {
		t.Fatalf("third = %v (ok=%v)", third, ok)
	}
	if next, ok := r.NextFrom(third, 3); ok {
		t.Errorf("expected series exhausted after COUNT=3, got %v", next)
	}
}

func TestNextFrom_StepsFromMovedOccurrence(t *testing.T) {
	for _, tc := range []struct {
		name string
		rule string
		base time.Time
		want time.Time
	}{
		{
			name: "earlier time of day",
			rule: "FREQ=DAILY",
			base: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "later date",
			rule: "WEEKLY",
			base: day(2025, time.March, 20),
			want: day(2025, time.March, 27),
		},
		{
			name: "by day from an off-pattern date",
			rule: "FREQ=WEEKLY;BYDAY=MO",
			// 2025-03-19 is a Wednesday.
			base: day(2025, time.March, 19),
			want: day(2025, time.March, 24),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.rule)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, ok := r.NextFrom(tc.base, 2)
			if !ok || !got.Equal(tc.want) {
				t.Errorf("got %v (ok=%v), want %v", got, ok, tc.want)
			}
		})
	}
}

func TestNextFrom_ByDayCount(t *testing.T) {
	r, _ := Parse("FREQ=WEEKLY;BYDAY=MO,WE;COUNT=2")
	// 2024-05-06 is a Monday.
	base := day(2024, time.May, 6)
	if got, ok := r.NextFrom(base, 1); !ok || !got.Equal(day(2024, time.May, 8)) {
		t.Fatalf("got %v (ok=%v)", got, ok)
	}
	if next, ok := r.NextFrom(day(2024, time.May, 8), 2); ok {
		t.Errorf("expected series exhausted after COUNT=2, got %v", next)
	}
}

func TestNext_Until(t *testing.T) {
	r, err := Parse("FREQ=DAILY;UNTIL=20240105T000000Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := r.Next(day(2024, time.January, 4)); !ok {
		t.Error("expected Jan 5 to be within UNTIL")
	}
	if next, ok := r.Next(day(2024, time.January, 5)); ok {
		t.Errorf("expected no occurrence after UNTIL, got %v", next)
	}
}

func TestNext_ByDay(t *testing.T) {
	r, err := Parse("FREQ=WEEKLY;BYDAY=MO,WE")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// 2024-05-06 is a Monday.
	got, ok := r.Next(time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC))
	want := time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)
	if !ok || !got.Equal(want) {
		t.Errorf("got %v (ok=%v), want %v", got, ok, want)
	}
}

func TestUpcoming(t *testing.T) {
	r, _ := Parse("FREQ=MONTHLY")
	got := r.Upcoming(day(2024, time.January, 31), 1, 3)
	want := []time.Time{day(2024, time.February, 29), day(2024, time.March, 29), day(2024, time.April, 29)}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occurrence %d = %s, want %s", i, got[i].Format(time.DateOnly), want[i].Format(time.DateOnly))
		}
	}

	counted, _ := Parse("FREQ=DAILY;COUNT=4")
	if got := counted.Upcoming(day(2024, time.January, 2), 2, 5); len(got) != 2 {
		t.Errorf("COUNT=4 from the second occurrence: got %d more, want 2", len(got))
	}
}

func TestParseOrFallback(t *testing.T) {
	r, fellBack := ParseOrFallback("FREQ=FORTNIGHTLY")
	if !fellBack || r.Freq != Yearly {
		t.Fatalf("got %+v fellBack=%v, want yearly fallback", r, fellBack)
	}
	got, _ := r.Next(day(2024, time.March, 10))
	if !got.Equal(day(2025, time.March, 10)) {
		t.Errorf("fallback next = %s, want 2025-03-10", got.Format(time.DateOnly))
	}
}

func TestRule_String(t *testing.T) {
	r, _ := Parse("weekly")
	if got := r.String(); got != "FREQ=WEEKLY;INTERVAL=1" {
		t.Errorf("String() = %q", got)
	}
}
