package services

import (
	"strings"
	"time"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// ResolutionKind classifies what the rule-based resolver made of a raw
// frequency string.
type ResolutionKind string

const (
	// ResolutionCanonical: a known recurrence keyword matched.
	ResolutionCanonical ResolutionKind = "canonical"
	// ResolutionUnnormalized: no keyword matched but the text contains a
	// digit; treated as recurring, kept verbatim for display, excluded from
	// period math.
	ResolutionUnnormalized ResolutionKind = "unnormalized"
	// ResolutionOneTime: the text matched a one-time pattern, is empty, or
	// matched nothing (low confidence default).
	ResolutionOneTime ResolutionKind = "one_time"
)

// FrequencyResolution is the resolver outcome. Resolve never fails; an
// unrecognized label is itself a reportable result, and callers with a low
// Confidence may ask the advisory classifier for a second opinion.
type FrequencyResolution struct {
	Kind         ResolutionKind
	ScheduleKind types.ScheduleKind
	Normalized   types.Frequency
	Verbatim     string
	Matched      string
	Confidence   float64
}

type FrequencyService interface {
	Resolve(label string) FrequencyResolution
	// NextDueDate advances from one due date to the next. The bool is false
	// for frequencies with no period math (non-canonical).
	NextDueDate(freq types.Frequency, from time.Time) (time.Time, bool)
	// PeriodBounds returns the calendar-aligned window containing from.
	PeriodBounds(freq types.Frequency, from time.Time) (time.Time, time.Time)
}

type frequencyService struct {
	log *logger.Logger
}

func NewFrequencyService(log *logger.Logger) FrequencyService {
	return &frequencyService{log: log.With("service", "FrequencyService")}
}

var oneTimePatterns = []string{
	"one time", "onetime", "once", "one-time", "initial", "setup",
	"n/a", "na", "not applicable", "none",
}

// Order matters: longer phrases shadow shorter substrings (e.g. "bi-weekly"
// must win before "weekly" gets a chance).
var recurringPatterns = []struct {
	freq     types.Frequency
	keywords []string
}{
	{types.FreqBiWeekly, []string{"bi-weekly", "biweekly", "every 2 weeks", "every two weeks", "fortnightly"}},
	{types.FreqSemiAnnually, []string{"semi-annual", "semiannual", "twice a year", "every 6 months", "every six months"}},
	{types.FreqQuarterly, []string{"quarterly", "every quarter", "every 3 months", "every three months"}},
	{types.FreqDaily, []string{"daily", "every day", "each day"}},
	{types.FreqWeekly, []string{"weekly", "every week", "each week"}},
	{types.FreqMonthly, []string{"monthly", "every month", "each month"}},
	{types.FreqAnnual, []string{"annual", "annually", "yearly", "every year", "each year"}},
}

func (s *frequencyService) Resolve(label string) FrequencyResolution {
	raw := strings.TrimSpace(label)
	if raw == "" {
		return FrequencyResolution{
			Kind:         ResolutionOneTime,
			ScheduleKind: types.ScheduleOneTime,
			Verbatim:     raw,
			Confidence:   0.9,
		}
	}

	lower := strings.ToLower(raw)

	for _, p := range oneTimePatterns {
		if strings.Contains(lower, p) {
			return FrequencyResolution{
				Kind:         ResolutionOneTime,
				ScheduleKind: types.ScheduleOneTime,
				Verbatim:     raw,
				Matched:      p,
				Confidence:   0.95,
			}
		}
	}

	for _, group := range recurringPatterns {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return FrequencyResolution{
					Kind:         ResolutionCanonical,
					ScheduleKind: types.ScheduleRecurring,
					Normalized:   group.freq,
					Verbatim:     raw,
					Matched:      kw,
					Confidence:   0.95,
				}
			}
		}
	}

	if strings.ContainsAny(lower, "0123456789") {
		return FrequencyResolution{
			Kind:         ResolutionUnnormalized,
			ScheduleKind: types.ScheduleRecurring,
			Verbatim:     raw,
			Confidence:   0.7,
		}
	}

	return FrequencyResolution{
		Kind:         ResolutionOneTime,
		ScheduleKind: types.ScheduleOneTime,
		Verbatim:     raw,
		Confidence:   0.5,
	}
}

func (s *frequencyService) NextDueDate(freq types.Frequency, from time.Time) (time.Time, bool) {
	d := dateOnly(from)
	switch freq {
	case types.FreqDaily:
		return d.AddDate(0, 0, 1), true
	case types.FreqWeekly:
		return d.AddDate(0, 0, 7), true
	case types.FreqBiWeekly:
		return d.AddDate(0, 0, 14), true
	case types.FreqMonthly:
		return addMonthsClamped(d, 1), true
	case types.FreqQuarterly:
		return addMonthsClamped(d, 3), true
	case types.FreqSemiAnnually:
		return addMonthsClamped(d, 6), true
	case types.FreqAnnual:
		return addMonthsClamped(d, 12), true
	}
	return time.Time{}, false
}

func (s *frequencyService) PeriodBounds(freq types.Frequency, from time.Time) (time.Time, time.Time) {
	d := dateOnly(from)
	switch freq {
	case types.FreqWeekly:
		start := mondayOf(d)
		return start, start.AddDate(0, 0, 6)
	case types.FreqBiWeekly:
		start := mondayOf(d)
		return start, start.AddDate(0, 0, 13)
	case types.FreqMonthly:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		return start, start.AddDate(0, 1, -1)
	case types.FreqQuarterly:
		q := (int(d.Month()) - 1) / 3
		start := time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, d.Location())
		return start, start.AddDate(0, 3, -1)
	case types.FreqSemiAnnually:
		if d.Month() <= time.June {
			return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location()),
				time.Date(d.Year(), time.June, 30, 0, 0, 0, 0, d.Location())
		}
		return time.Date(d.Year(), time.July, 1, 0, 0, 0, 0, d.Location()),
			time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
	case types.FreqAnnual:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location()),
			time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
	}
	// Daily and anything unrecognized: single-day window.
	return d, d
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// mondayOf returns the Monday of the ISO week containing d.
func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// addMonthsClamped does calendar-month arithmetic with day-of-month overflow
// clamped to the target month's last day (Jan 31 + 1 month = Feb 28/29),
// instead of time.AddDate's normalization into the following month.
func addMonthsClamped(d time.Time, months int) time.Time {
	firstOfTarget := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, d.Location())
}
