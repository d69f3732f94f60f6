package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/accredify/accredify-backend/internal/clients/redis"
	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// ComplianceResult is the derived compliance picture for one obligation.
type ComplianceResult struct {
	ObligationID    uuid.UUID              `json:"obligation_id"`
	Status          types.ComplianceStatus `json:"status"`
	ScheduleKind    types.ScheduleKind     `json:"schedule_kind"`
	EvidenceCount   int                    `json:"evidence_count"`
	ExpectedCount   int                    `json:"expected_count"`
	CoveredCount    int                    `json:"covered_count"`
	Missing         []Period               `json:"missing_periods,omitempty"`
	CoveragePercent float64                `json:"coverage_percent"`
	LastSubmitted   *time.Time             `json:"last_submitted,omitempty"`
	NextDueDate     *time.Time             `json:"next_due_date,omitempty"`
	ComputedAt      time.Time              `json:"computed_at"`
}

type ComplianceService interface {
	// Status computes the compliance picture without writing anything.
	Status(ctx context.Context, obligationID uuid.UUID) (*ComplianceResult, error)
	// Recalculate derives status and, when it differs from the stored value,
	// updates the obligation and appends a system-computed audit row. The
	// derive-and-write runs under a per-obligation row lock so concurrent
	// evidence submissions cannot interleave stale snapshots. Safe to call
	// redundantly: a repeat with no evidence change writes nothing.
	Recalculate(ctx context.Context, obligationID uuid.UUID) (*ComplianceResult, error)
	// OverrideStatus is the manual escape hatch; it always attributes the
	// audit row to the acting user.
	OverrideStatus(ctx context.Context, actorID uuid.UUID, obligationID uuid.UUID, status types.ComplianceStatus, note string) error
	History(ctx context.Context, obligationID uuid.UUID) ([]*types.StatusChangeAudit, error)
}

type complianceService struct {
	log         *logger.Logger
	db          *gorm.DB
	obligations repos.ObligationRepo
	evidence    repos.EvidenceRepo
	periods     repos.PeriodRepo
	audits      repos.AuditRepo
	coverage    CoverageService
	freq        FrequencyService
	cache       redisclient.CoverageCache
	now         func() time.Time
}

func NewComplianceService(
	log *logger.Logger,
	db *gorm.DB,
	obligations repos.ObligationRepo,
	evidence repos.EvidenceRepo,
	periods repos.PeriodRepo,
	audits repos.AuditRepo,
	coverage CoverageService,
	freq FrequencyService,
	cache redisclient.CoverageCache,
) ComplianceService {
	return &complianceService{
		log:         log.With("service", "ComplianceService"),
		db:          db,
		obligations: obligations,
		evidence:    evidence,
		periods:     periods,
		audits:      audits,
		coverage:    coverage,
		freq:        freq,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *complianceService) Status(ctx context.Context, obligationID uuid.UUID) (*ComplianceResult, error) {
	if res := s.readCache(ctx, obligationID); res != nil {
		return res, nil
	}
	ob, err := s.obligations.GetByID(ctx, nil, obligationID)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, fmt.Errorf("obligation %s: %w", obligationID, pkgerrors.ErrNotFound)
	}
	ev, err := s.evidence.ListByObligation(ctx, nil, obligationID)
	if err != nil {
		return nil, err
	}
	res := s.derive(ob, ev, s.now())
	s.writeCache(ctx, obligationID, res)
	return res, nil
}

func (s *complianceService) Recalculate(ctx context.Context, obligationID uuid.UUID) (*ComplianceResult, error) {
	var result *ComplianceResult

	// Drop the snapshot up front so readers recompute while the write is in
	// flight instead of serving the pre-recalculation value.
	s.dropCache(ctx, obligationID)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.obligations.LockByID(ctx, tx, obligationID)
		if err != nil {
			return err
		}
		if ob == nil {
			return fmt.Errorf("obligation %s: %w", obligationID, pkgerrors.ErrNotFound)
		}

		ev, err := s.evidence.ListByObligation(ctx, tx, obligationID)
		if err != nil {
			return err
		}

		result = s.derive(ob, ev, s.now())

		updates := map[string]interface{}{}
		if result.Status != ob.ComplianceStatus {
			if _, err := s.audits.Append(ctx, tx, &types.StatusChangeAudit{
				EntityType: types.AuditEntityObligation,
				EntityID:   ob.ID,
				OldStatus:  string(ob.ComplianceStatus),
				NewStatus:  string(result.Status),
				Note:       "system-computed: evidence coverage recalculation",
			}); err != nil {
				return err
			}
			updates["compliance_status"] = result.Status
		}
		// The due date refreshes on every recalculation, not just on status
		// changes: partial coverage inside one period moves the date without
		// moving the status.
		if result.NextDueDate != nil && !sameDate(ob.NextDueDate, *result.NextDueDate) {
			updates["next_due_date"] = *result.NextDueDate
		}
		if len(updates) > 0 {
			if err := s.obligations.UpdateFields(ctx, tx, ob.ID, updates); err != nil {
				return err
			}
		}

		return s.refreshPeriodView(ctx, tx, ob, ev, result)
	})
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, obligationID, result)
	return result, nil
}

func (s *complianceService) OverrideStatus(ctx context.Context, actorID uuid.UUID, obligationID uuid.UUID, status types.ComplianceStatus, note string) error {
	if !status.Valid() {
		return fmt.Errorf("compliance status %q: %w", status, pkgerrors.ErrInvalidArgument)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.obligations.LockByID(ctx, tx, obligationID)
		if err != nil {
			return err
		}
		if ob == nil {
			return fmt.Errorf("obligation %s: %w", obligationID, pkgerrors.ErrNotFound)
		}
		if ob.ComplianceStatus == status {
			return nil
		}
		if _, err := s.audits.Append(ctx, tx, &types.StatusChangeAudit{
			EntityType: types.AuditEntityObligation,
			EntityID:   ob.ID,
			OldStatus:  string(ob.ComplianceStatus),
			NewStatus:  string(status),
			ActorID:    &actorID,
			Note:       note,
		}); err != nil {
			return err
		}
		return s.obligations.UpdateFields(ctx, tx, ob.ID, map[string]interface{}{
			"compliance_status": status,
		})
	})
	if err != nil {
		return err
	}
	s.dropCache(ctx, obligationID)
	return nil
}

func (s *complianceService) History(ctx context.Context, obligationID uuid.UUID) ([]*types.StatusChangeAudit, error) {
	return s.audits.ListByEntity(ctx, nil, types.AuditEntityObligation, obligationID)
}

// derive is the pure policy core.
//
// One-time obligations: compliant iff any evidence exists.
// Recurring obligations: compliant when every expected period is covered and
// at least one period has elapsed; not compliant when nothing is covered,
// including the zero-expected-periods case (an obligation created today with
// an Annual frequency is NotCompliant, deliberately, not vacuously
// compliant); in process otherwise.
func (s *complianceService) derive(ob *types.Obligation, ev []*types.EvidenceRecord, asOf time.Time) *ComplianceResult {
	res := &ComplianceResult{
		ObligationID:  ob.ID,
		ScheduleKind:  ob.ScheduleKind,
		EvidenceCount: len(ev),
		ComputedAt:    asOf,
	}
	if last := lastSubmitted(ev); last != nil {
		res.LastSubmitted = last
	}

	if ob.ScheduleKind != types.ScheduleRecurring || !ob.NormalizedFrequency.Canonical() {
		res.ScheduleKind = types.ScheduleOneTime
		res.NextDueDate = ob.NextDueDate
		if len(ev) > 0 {
			res.Status = types.StatusCompliant
		} else {
			res.Status = types.StatusNotCompliant
		}
		return res
	}

	stats := s.coverage.Coverage(ob, ev, asOf)
	res.ExpectedCount = len(stats.Expected)
	res.CoveredCount = stats.CoveredCount
	res.Missing = stats.Missing
	res.CoveragePercent = stats.CoveragePercent

	switch {
	case len(stats.Expected) > 0 && len(stats.Missing) == 0:
		res.Status = types.StatusCompliant
	case stats.CoveredCount == 0:
		res.Status = types.StatusNotCompliant
	default:
		res.Status = types.StatusInProcess
	}

	if next, ok := s.freq.NextDueDate(ob.NormalizedFrequency, asOf); ok {
		res.NextDueDate = &next
	}
	return res
}

// refreshPeriodView rebuilds the EvidencePeriod materialized rows for the
// obligation's expected periods. Per-period policy preserved from the
// original system: expected count defaults to 1 and compliance is
// actual >= expected.
func (s *complianceService) refreshPeriodView(ctx context.Context, tx *gorm.DB, ob *types.Obligation, ev []*types.EvidenceRecord, res *ComplianceResult) error {
	if ob.ScheduleKind != types.ScheduleRecurring || !ob.NormalizedFrequency.Canonical() {
		return nil
	}
	actual := evidencePeriods(ev)
	for _, p := range s.coverage.ExpectedPeriods(ob, res.ComputedAt) {
		count := 0
		for _, a := range actual {
			if p.Overlaps(a.Start, a.End) {
				count++
			}
		}
		expected := 1
		row := &types.EvidencePeriod{
			ObligationID:  ob.ID,
			PeriodStart:   p.Start,
			PeriodEnd:     p.End,
			ExpectedCount: expected,
			ActualCount:   count,
			IsCompliant:   count >= expected,
		}
		if err := s.periods.Upsert(ctx, tx, row); err != nil {
			return err
		}
	}
	return nil
}

// readCache returns the cached snapshot, or nil on a miss or any cache
// trouble. Callers always have the recompute path to fall back on.
func (s *complianceService) readCache(ctx context.Context, obligationID uuid.UUID) *ComplianceResult {
	if s.cache == nil {
		return nil
	}
	snapshot, ok, err := s.cache.Get(ctx, obligationID.String())
	if err != nil {
		s.log.Warn("coverage cache read failed", "obligation_id", obligationID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var res ComplianceResult
	if err := json.Unmarshal(snapshot, &res); err != nil {
		s.log.Warn("coverage cache snapshot unreadable", "obligation_id", obligationID, "error", err)
		return nil
	}
	return &res
}

func (s *complianceService) dropCache(ctx context.Context, obligationID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, obligationID.String()); err != nil {
		s.log.Warn("coverage cache invalidation failed", "obligation_id", obligationID, "error", err)
	}
}

func (s *complianceService) writeCache(ctx context.Context, obligationID uuid.UUID, res *ComplianceResult) {
	if s.cache == nil || res == nil {
		return
	}
	snapshot, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Put(ctx, obligationID.String(), snapshot, 15*time.Minute); err != nil {
		s.log.Warn("coverage cache write failed", "obligation_id", obligationID, "error", err)
	}
}

// sameDate compares calendar days regardless of location; stored dates come
// back from the date column at UTC midnight while computed ones are local.
func sameDate(stored *time.Time, computed time.Time) bool {
	if stored == nil {
		return false
	}
	sy, sm, sd := stored.Date()
	cy, cm, cd := computed.Date()
	return sy == cy && sm == cm && sd == cd
}

func lastSubmitted(ev []*types.EvidenceRecord) *time.Time {
	var last *time.Time
	for _, e := range ev {
		if e == nil {
			continue
		}
		t := e.SubmittedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}
