package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/data/repos"
	"github.com/accredify/accredify-backend/internal/data/repos/testutil"
	types "github.com/accredify/accredify-backend/internal/domain"
)

func newDeriveService(t *testing.T) *complianceService {
	t.Helper()
	log := testutil.Logger(t)
	freq := NewFrequencyService(log)
	return &complianceService{
		log:      log,
		coverage: NewCoverageService(log, freq),
		freq:     freq,
		now:      time.Now,
	}
}

func TestDeriveOneTime(t *testing.T) {
	svc := newDeriveService(t)
	asOf := testutil.Date(2024, 6, 1)
	ob := &types.Obligation{
		ID:           uuid.New(),
		ScheduleKind: types.ScheduleOneTime,
		CreatedAt:    testutil.Date(2024, 1, 1),
	}

	t.Run("no evidence is not compliant", func(t *testing.T) {
		res := svc.derive(ob, nil, asOf)
		if res.Status != types.StatusNotCompliant {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusNotCompliant)
		}
		if res.ExpectedCount != 0 {
			t.Fatalf("expected count = %d, want 0 for one-time", res.ExpectedCount)
		}
	})

	t.Run("any evidence is compliant", func(t *testing.T) {
		ev := []*types.EvidenceRecord{{
			Kind:        types.EvidenceFile,
			SubmittedAt: testutil.Date(2024, 2, 1),
		}}
		res := svc.derive(ob, ev, asOf)
		if res.Status != types.StatusCompliant {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusCompliant)
		}
		if res.LastSubmitted == nil || !res.LastSubmitted.Equal(testutil.Date(2024, 2, 1)) {
			t.Fatalf("last submitted = %v, want 2024-02-01", res.LastSubmitted)
		}
	})
}

func TestDeriveRecurring(t *testing.T) {
	svc := newDeriveService(t)
	asOf := testutil.Date(2024, 3, 15)
	ob := recurringObligation(types.FreqMonthly, testutil.Date(2024, 1, 15))
	ob.ID = uuid.New()

	t.Run("no coverage is not compliant", func(t *testing.T) {
		res := svc.derive(ob, nil, asOf)
		if res.Status != types.StatusNotCompliant {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusNotCompliant)
		}
	})

	t.Run("partial coverage is in process", func(t *testing.T) {
		ev := []*types.EvidenceRecord{
			evidenceFor(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 31)),
		}
		res := svc.derive(ob, ev, asOf)
		if res.Status != types.StatusInProcess {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusInProcess)
		}
		if len(res.Missing) != 2 {
			t.Fatalf("missing = %d, want 2", len(res.Missing))
		}
	})

	t.Run("full coverage is compliant", func(t *testing.T) {
		ev := []*types.EvidenceRecord{
			evidenceFor(testutil.Date(2024, 1, 1), testutil.Date(2024, 3, 31)),
		}
		res := svc.derive(ob, ev, asOf)
		if res.Status != types.StatusCompliant {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusCompliant)
		}
		if res.NextDueDate == nil {
			t.Fatal("next due date not set for recurring obligation")
		}
	})

	t.Run("unnormalized frequency falls back to one-time rules", func(t *testing.T) {
		unnorm := &types.Obligation{
			ID:            uuid.New(),
			ScheduleKind:  types.ScheduleRecurring,
			FrequencyText: "every 3 years",
			CreatedAt:     testutil.Date(2024, 1, 1),
		}
		res := svc.derive(unnorm, nil, asOf)
		if res.Status != types.StatusNotCompliant {
			t.Fatalf("status = %s, want %s", res.Status, types.StatusNotCompliant)
		}
		if res.ScheduleKind != types.ScheduleOneTime {
			t.Fatalf("schedule kind = %s, want reported as one-time", res.ScheduleKind)
		}
	})
}

func newComplianceHarness(t *testing.T) (context.Context, *complianceHarness) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	freq := NewFrequencyService(log)

	h := &complianceHarness{
		obligations: repos.NewObligationRepo(tx, log),
		evidence:    repos.NewEvidenceRepo(tx, log),
		periods:     repos.NewPeriodRepo(tx, log),
		audits:      repos.NewAuditRepo(tx, log),
	}
	h.svc = NewComplianceService(log, tx, h.obligations, h.evidence, h.periods, h.audits,
		NewCoverageService(log, freq), freq, nil)
	h.tx = tx
	return context.Background(), h
}

type complianceHarness struct {
	tx          *gorm.DB
	svc         ComplianceService
	obligations repos.ObligationRepo
	evidence    repos.EvidenceRepo
	periods     repos.PeriodRepo
	audits      repos.AuditRepo
}

func TestRecalculateIdempotent(t *testing.T) {
	ctx, h := newComplianceHarness(t)

	p := testutil.SeedProject(t, ctx, h.tx, "recalc idempotent")
	sec := testutil.SeedSection(t, ctx, h.tx, p.ID, "Governance")
	std := testutil.SeedStandard(t, ctx, h.tx, sec.ID, "GV.1")
	ob := testutil.SeedObligation(t, ctx, h.tx, p.ID, sec.ID, std.ID, "recalc-idem")

	if _, err := h.svc.Recalculate(ctx, ob.ID); err != nil {
		t.Fatalf("first recalculate: %v", err)
	}
	if _, err := h.svc.Recalculate(ctx, ob.ID); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}

	audits, err := h.audits.ListByEntity(ctx, h.tx, types.AuditEntityObligation, ob.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	// Seeded as NotCompliant, derived as NotCompliant: no transition, so no
	// audit rows at all, and the second run must not add any either.
	if len(audits) != 0 {
		t.Fatalf("audit rows = %d, want 0", len(audits))
	}
}

func TestRecalculateEvidenceFlipsStatus(t *testing.T) {
	ctx, h := newComplianceHarness(t)

	p := testutil.SeedProject(t, ctx, h.tx, "recalc flip")
	sec := testutil.SeedSection(t, ctx, h.tx, p.ID, "Operations")
	std := testutil.SeedStandard(t, ctx, h.tx, sec.ID, "OP.2")
	ob := testutil.SeedObligation(t, ctx, h.tx, p.ID, sec.ID, std.ID, "recalc-flip")

	if _, err := h.evidence.Create(ctx, h.tx, &types.EvidenceRecord{
		ObligationID: ob.ID,
		Title:        "signed policy",
		Kind:         types.EvidenceFile,
		StorageKey:   "policies/signed.pdf",
		SubmittedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("create evidence: %v", err)
	}

	res, err := h.svc.Recalculate(ctx, ob.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if res.Status != types.StatusCompliant {
		t.Fatalf("status = %s, want %s", res.Status, types.StatusCompliant)
	}

	stored, err := h.obligations.GetByID(ctx, h.tx, ob.ID)
	if err != nil {
		t.Fatalf("get obligation: %v", err)
	}
	if stored.ComplianceStatus != types.StatusCompliant {
		t.Fatalf("stored status = %s, want %s", stored.ComplianceStatus, types.StatusCompliant)
	}

	audits, err := h.audits.ListByEntity(ctx, h.tx, types.AuditEntityObligation, ob.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(audits))
	}
	if audits[0].ActorID != nil {
		t.Fatal("system-computed audit row should have no actor")
	}

	// A second pass with no evidence change leaves the log untouched.
	if _, err := h.svc.Recalculate(ctx, ob.ID); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	audits, err = h.audits.ListByEntity(ctx, h.tx, types.AuditEntityObligation, ob.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("audit rows after repeat = %d, want 1", len(audits))
	}
}

func TestRecalculateRefreshesNextDueDate(t *testing.T) {
	ctx, h := newComplianceHarness(t)

	p := testutil.SeedProject(t, ctx, h.tx, "recalc due date")
	sec := testutil.SeedSection(t, ctx, h.tx, p.ID, "Training")
	std := testutil.SeedStandard(t, ctx, h.tx, sec.ID, "TR.4")
	ob := testutil.SeedObligation(t, ctx, h.tx, p.ID, sec.ID, std.ID, "recalc-due")

	stale := testutil.Date(2020, 1, 31)
	if err := h.obligations.UpdateFields(ctx, h.tx, ob.ID, map[string]interface{}{
		"schedule_kind":        types.ScheduleRecurring,
		"normalized_frequency": types.FreqMonthly,
		"next_due_date":        stale,
	}); err != nil {
		t.Fatalf("prime obligation: %v", err)
	}

	res, err := h.svc.Recalculate(ctx, ob.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	// No evidence, so the status stays NotCompliant and the run produces no
	// transition. The due date must still move off the stale value.
	if res.Status != types.StatusNotCompliant {
		t.Fatalf("status = %s, want %s", res.Status, types.StatusNotCompliant)
	}

	stored, err := h.obligations.GetByID(ctx, h.tx, ob.ID)
	if err != nil {
		t.Fatalf("get obligation: %v", err)
	}
	if stored.NextDueDate == nil {
		t.Fatal("stored next_due_date is nil after recalculation")
	}
	if sy, sm, sd := stored.NextDueDate.Date(); sy == 2020 && sm == time.January && sd == 31 {
		t.Fatal("stored next_due_date still carries the stale value")
	}
	if !stored.NextDueDate.After(time.Now()) {
		t.Fatalf("stored next_due_date = %s, want a future date", stored.NextDueDate)
	}

	audits, err := h.audits.ListByEntity(ctx, h.tx, types.AuditEntityObligation, ob.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(audits) != 0 {
		t.Fatalf("audit rows = %d, want 0; due date refresh alone is not a transition", len(audits))
	}
}

func TestOverrideStatus(t *testing.T) {
	ctx, h := newComplianceHarness(t)

	p := testutil.SeedProject(t, ctx, h.tx, "override")
	sec := testutil.SeedSection(t, ctx, h.tx, p.ID, "Safety")
	std := testutil.SeedStandard(t, ctx, h.tx, sec.ID, "SF.1")
	ob := testutil.SeedObligation(t, ctx, h.tx, p.ID, sec.ID, std.ID, "override-1")

	actor := uuid.New()
	if err := h.svc.OverrideStatus(ctx, actor, ob.ID, types.StatusInProcess, "external audit in progress"); err != nil {
		t.Fatalf("override: %v", err)
	}

	audits, err := h.audits.ListByEntity(ctx, h.tx, types.AuditEntityObligation, ob.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(audits))
	}
	if audits[0].ActorID == nil || *audits[0].ActorID != actor {
		t.Fatal("override audit row must carry the actor")
	}

	if err := h.svc.OverrideStatus(ctx, actor, ob.ID, "fixed", "bad status"); err == nil {
		t.Fatal("invalid status accepted")
	}
}
