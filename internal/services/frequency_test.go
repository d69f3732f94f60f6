package services

import (
	"testing"
	"time"

	"github.com/accredify/accredify-backend/internal/data/repos/testutil"
	types "github.com/accredify/accredify-backend/internal/domain"
)

func newFrequencyService(t *testing.T) FrequencyService {
	t.Helper()
	return NewFrequencyService(testutil.Logger(t))
}

func TestResolve(t *testing.T) {
	svc := newFrequencyService(t)

	cases := []struct {
		label     string
		wantKind  ResolutionKind
		wantSched types.ScheduleKind
		wantNorm  types.Frequency
	}{
		{"Quarterly", ResolutionCanonical, types.ScheduleRecurring, types.FreqQuarterly},
		{"quarterly", ResolutionCanonical, types.ScheduleRecurring, types.FreqQuarterly},
		{"  Monthly  ", ResolutionCanonical, types.ScheduleRecurring, types.FreqMonthly},
		{"every 6 months", ResolutionCanonical, types.ScheduleRecurring, types.FreqSemiAnnually},
		{"semi-annually", ResolutionCanonical, types.ScheduleRecurring, types.FreqSemiAnnually},
		{"fortnightly", ResolutionCanonical, types.ScheduleRecurring, types.FreqBiWeekly},
		{"bi-weekly", ResolutionCanonical, types.ScheduleRecurring, types.FreqBiWeekly},
		{"Annual review", ResolutionCanonical, types.ScheduleRecurring, types.FreqAnnual},
		{"yearly", ResolutionCanonical, types.ScheduleRecurring, types.FreqAnnual},
		{"daily checks", ResolutionCanonical, types.ScheduleRecurring, types.FreqDaily},
		{"every 3 years", ResolutionUnnormalized, types.ScheduleRecurring, ""},
		{"one time", ResolutionOneTime, types.ScheduleOneTime, ""},
		{"once during accreditation", ResolutionOneTime, types.ScheduleOneTime, ""},
		{"N/A", ResolutionOneTime, types.ScheduleOneTime, ""},
		{"", ResolutionOneTime, types.ScheduleOneTime, ""},
		{"as needed", ResolutionOneTime, types.ScheduleOneTime, ""},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			got := svc.Resolve(tc.label)
			if got.Kind != tc.wantKind {
				t.Fatalf("Resolve(%q).Kind = %s, want %s", tc.label, got.Kind, tc.wantKind)
			}
			if got.ScheduleKind != tc.wantSched {
				t.Fatalf("Resolve(%q).ScheduleKind = %s, want %s", tc.label, got.ScheduleKind, tc.wantSched)
			}
			if got.Normalized != tc.wantNorm {
				t.Fatalf("Resolve(%q).Normalized = %q, want %q", tc.label, got.Normalized, tc.wantNorm)
			}
		})
	}
}

func TestResolveNeverEscalatesUnrecognizedDigits(t *testing.T) {
	svc := newFrequencyService(t)
	got := svc.Resolve("2 times per accreditation cycle")
	if got.Kind != ResolutionUnnormalized {
		t.Fatalf("Kind = %s, want %s", got.Kind, ResolutionUnnormalized)
	}
	if got.Verbatim != "2 times per accreditation cycle" {
		t.Fatalf("Verbatim = %q, want the raw label preserved", got.Verbatim)
	}
	if got.Normalized != "" {
		t.Fatalf("Normalized = %q, want empty for unnormalized resolution", got.Normalized)
	}
}

func TestNextDueDate(t *testing.T) {
	svc := newFrequencyService(t)

	cases := []struct {
		name string
		freq types.Frequency
		from time.Time
		want time.Time
	}{
		{"daily", types.FreqDaily, testutil.Date(2024, 3, 10), testutil.Date(2024, 3, 11)},
		{"weekly", types.FreqWeekly, testutil.Date(2024, 3, 10), testutil.Date(2024, 3, 17)},
		{"biweekly", types.FreqBiWeekly, testutil.Date(2024, 3, 10), testutil.Date(2024, 3, 24)},
		{"monthly", types.FreqMonthly, testutil.Date(2024, 3, 10), testutil.Date(2024, 4, 10)},
		{"monthly clamps jan 31 to leap feb 29", types.FreqMonthly, testutil.Date(2024, 1, 31), testutil.Date(2024, 2, 29)},
		{"monthly clamps jan 31 to feb 28", types.FreqMonthly, testutil.Date(2023, 1, 31), testutil.Date(2023, 2, 28)},
		{"monthly rolls over year", types.FreqMonthly, testutil.Date(2023, 12, 15), testutil.Date(2024, 1, 15)},
		{"quarterly", types.FreqQuarterly, testutil.Date(2024, 1, 31), testutil.Date(2024, 4, 30)},
		{"semi-annually", types.FreqSemiAnnually, testutil.Date(2024, 8, 31), testutil.Date(2025, 2, 28)},
		{"annual clamps leap day", types.FreqAnnual, testutil.Date(2024, 2, 29), testutil.Date(2025, 2, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := svc.NextDueDate(tc.freq, tc.from)
			if !ok {
				t.Fatalf("NextDueDate(%s, %s) not computable", tc.freq, tc.from.Format("2006-01-02"))
			}
			if !got.Equal(tc.want) {
				t.Fatalf("NextDueDate(%s, %s) = %s, want %s",
					tc.freq, tc.from.Format("2006-01-02"), got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
			}
		})
	}

	if _, ok := svc.NextDueDate("", testutil.Date(2024, 1, 1)); ok {
		t.Fatal("NextDueDate with empty frequency should not be computable")
	}
}

func TestPeriodBounds(t *testing.T) {
	svc := newFrequencyService(t)

	cases := []struct {
		name      string
		freq      types.Frequency
		from      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"daily is the day itself", types.FreqDaily, testutil.Date(2024, 3, 13), testutil.Date(2024, 3, 13), testutil.Date(2024, 3, 13)},
		{"weekly aligns to monday", types.FreqWeekly, testutil.Date(2024, 3, 13), testutil.Date(2024, 3, 11), testutil.Date(2024, 3, 17)},
		{"weekly from a monday", types.FreqWeekly, testutil.Date(2024, 3, 11), testutil.Date(2024, 3, 11), testutil.Date(2024, 3, 17)},
		{"weekly from a sunday", types.FreqWeekly, testutil.Date(2024, 3, 17), testutil.Date(2024, 3, 11), testutil.Date(2024, 3, 17)},
		{"biweekly spans 14 days", types.FreqBiWeekly, testutil.Date(2024, 3, 13), testutil.Date(2024, 3, 11), testutil.Date(2024, 3, 24)},
		{"monthly covers the calendar month", types.FreqMonthly, testutil.Date(2024, 2, 10), testutil.Date(2024, 2, 1), testutil.Date(2024, 2, 29)},
		{"quarterly q2", types.FreqQuarterly, testutil.Date(2024, 5, 20), testutil.Date(2024, 4, 1), testutil.Date(2024, 6, 30)},
		{"semi-annually first half", types.FreqSemiAnnually, testutil.Date(2024, 3, 1), testutil.Date(2024, 1, 1), testutil.Date(2024, 6, 30)},
		{"semi-annually second half", types.FreqSemiAnnually, testutil.Date(2024, 9, 1), testutil.Date(2024, 7, 1), testutil.Date(2024, 12, 31)},
		{"annual covers the year", types.FreqAnnual, testutil.Date(2024, 6, 15), testutil.Date(2024, 1, 1), testutil.Date(2024, 12, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := svc.PeriodBounds(tc.freq, tc.from)
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Fatalf("PeriodBounds(%s, %s) = (%s, %s), want (%s, %s)",
					tc.freq, tc.from.Format("2006-01-02"),
					start.Format("2006-01-02"), end.Format("2006-01-02"),
					tc.wantStart.Format("2006-01-02"), tc.wantEnd.Format("2006-01-02"))
			}
		})
	}
}
