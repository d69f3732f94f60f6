package services

import (
	"time"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// Period is one calendar window implied by an obligation's frequency.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps is the coverage test: inclusive on both ends, so evidence whose
// bounds touch a period's edge still counts.
func (p Period) Overlaps(start, end time.Time) bool {
	return !(end.Before(p.Start) || start.After(p.End))
}

// CoverageStats summarizes one obligation's period coverage as of a date.
type CoverageStats struct {
	Expected        []Period `json:"expected"`
	Missing         []Period `json:"missing"`
	CoveredCount    int      `json:"covered_count"`
	CoveragePercent float64  `json:"coverage_percent"`
}

type CoverageService interface {
	// ExpectedPeriods walks forward from the obligation's creation date,
	// one period per due-date step, until the step would pass asOf.
	ExpectedPeriods(ob *types.Obligation, asOf time.Time) []Period
	MissingPeriods(ob *types.Obligation, evidence []*types.EvidenceRecord, asOf time.Time) []Period
	Coverage(ob *types.Obligation, evidence []*types.EvidenceRecord, asOf time.Time) CoverageStats
}

type coverageService struct {
	log  *logger.Logger
	freq FrequencyService
}

func NewCoverageService(log *logger.Logger, freq FrequencyService) CoverageService {
	return &coverageService{log: log.With("service", "CoverageService"), freq: freq}
}

func (s *coverageService) ExpectedPeriods(ob *types.Obligation, asOf time.Time) []Period {
	if ob == nil || ob.ScheduleKind != types.ScheduleRecurring || !ob.NormalizedFrequency.Canonical() {
		return nil
	}

	var periods []Period
	current := dateOnly(ob.CreatedAt)
	end := dateOnly(asOf)

	for !current.After(end) {
		start, stop := s.freq.PeriodBounds(ob.NormalizedFrequency, current)
		p := Period{Start: start, End: stop}

		if len(periods) == 0 || !periods[len(periods)-1].equal(p) {
			periods = append(periods, p)
		}

		// Termination guard: if the next due date does not advance past the
		// cursor the walk stops rather than loop, trading completeness for a
		// deterministic result.
		next, ok := s.freq.NextDueDate(ob.NormalizedFrequency, start)
		if !ok || !next.After(current) {
			break
		}
		current = next
	}

	return periods
}

func (s *coverageService) MissingPeriods(ob *types.Obligation, evidence []*types.EvidenceRecord, asOf time.Time) []Period {
	expected := s.ExpectedPeriods(ob, asOf)
	if len(expected) == 0 {
		return nil
	}

	actual := evidencePeriods(evidence)

	var missing []Period
	for _, p := range expected {
		covered := false
		for _, a := range actual {
			if p.Overlaps(a.Start, a.End) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, p)
		}
	}
	return missing
}

func (s *coverageService) Coverage(ob *types.Obligation, evidence []*types.EvidenceRecord, asOf time.Time) CoverageStats {
	expected := s.ExpectedPeriods(ob, asOf)
	missing := s.MissingPeriods(ob, evidence, asOf)

	covered := len(expected) - len(missing)
	pct := 0.0
	if len(expected) > 0 {
		pct = float64(covered) / float64(len(expected)) * 100
	}
	return CoverageStats{
		Expected:        expected,
		Missing:         missing,
		CoveredCount:    covered,
		CoveragePercent: pct,
	}
}

func (p Period) equal(o Period) bool {
	return p.Start.Equal(o.Start) && p.End.Equal(o.End)
}

// evidencePeriods extracts the period-tagged evidence windows. Records with
// either bound missing never count toward recurring coverage.
func evidencePeriods(evidence []*types.EvidenceRecord) []Period {
	var out []Period
	for _, e := range evidence {
		if e == nil || e.PeriodStart == nil || e.PeriodEnd == nil {
			continue
		}
		out = append(out, Period{Start: dateOnly(*e.PeriodStart), End: dateOnly(*e.PeriodEnd)})
	}
	return out
}
