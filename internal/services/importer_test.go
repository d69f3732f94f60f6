package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/data/repos"
	"github.com/accredify/accredify-backend/internal/data/repos/testutil"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
)

func TestIdentityKeyDeterministic(t *testing.T) {
	projectID := uuid.MustParse("6f1f9b36-63c1-4f08-94d1-0c2a9a7bb0de")

	a := IdentityKey(projectID, "Governance", "GV.1", "Board meets quarterly")
	b := IdentityKey(projectID, "Governance", "GV.1", "Board meets quarterly")
	if a != b {
		t.Fatalf("identical inputs produced different keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("key length = %d, want 64 hex chars", len(a))
	}

	// Cosmetic differences fold away.
	c := IdentityKey(projectID, "  governance ", "gv.1", "BOARD MEETS QUARTERLY")
	if a != c {
		t.Fatal("case/whitespace variants forked the identity key")
	}

	// Different coordinates fork.
	if a == IdentityKey(projectID, "Governance", "GV.2", "Board meets quarterly") {
		t.Fatal("different standard produced the same key")
	}
	if a == IdentityKey(uuid.New(), "Governance", "GV.1", "Board meets quarterly") {
		t.Fatal("different project produced the same key")
	}
}

func TestHeaderIndex(t *testing.T) {
	full := []string{"Section", "Standard", "Indicator", "Evidence Required", "Responsible Person", "Frequency", "Assigned to", "Compliance Evidence", "Score"}

	if _, err := headerIndex(full); err != nil {
		t.Fatalf("full header rejected: %v", err)
	}

	shuffledCase := []string{"SECTION", "standard", "Indicator", "evidence required", "Responsible Person", "FREQUENCY", "Assigned To", "Compliance Evidence", "score"}
	if _, err := headerIndex(shuffledCase); err != nil {
		t.Fatalf("case variants rejected: %v", err)
	}

	missing := []string{"Section", "Standard", "Evidence Required", "Responsible Person", "Frequency", "Assigned to", "Compliance Evidence", "Score"}
	_, err := headerIndex(missing)
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("missing Indicator column: err = %v, want %v", err, pkgerrors.ErrInvalidArgument)
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 10},
		{"5", 5},
		{"0", 0},
		{"abc", 10},
		{"-3", 10},
	}
	for _, tc := range cases {
		if got := parseScore(tc.raw); got != tc.want {
			t.Fatalf("parseScore(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

const checklistCSV = `Section,Standard,Indicator,Evidence Required,Responsible Person,Frequency,Assigned to,Compliance Evidence,Score
Governance,GV.1,Board meets and documents minutes,Minutes of meeting,Board Secretary,Quarterly,secretary@example.org,Minutes archive,10
Governance,GV.1,Annual self-assessment completed,Assessment report,Quality Officer,Annual,quality@example.org,,15
Operations,OP.2,Fire drill conducted,Drill report,Facilities Lead,every 6 months,facilities@example.org,Drill log,10
,,Missing coordinates row,,,Monthly,,,5
Operations,OP.2,Incident register maintained,Register export,Facilities Lead,ongoing basis,facilities@example.org,,10
`

func newImportHarness(t *testing.T) (context.Context, ImportService, *importHarness) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	freq := NewFrequencyService(log)

	h := &importHarness{
		tx:          tx,
		projects:    repos.NewProjectRepo(tx, log),
		sections:    repos.NewSectionRepo(tx, log),
		standards:   repos.NewStandardRepo(tx, log),
		obligations: repos.NewObligationRepo(tx, log),
	}

	evidence := repos.NewEvidenceRepo(tx, log)
	periods := repos.NewPeriodRepo(tx, log)
	audits := repos.NewAuditRepo(tx, log)
	compliance := NewComplianceService(log, tx, h.obligations, evidence, periods, audits,
		NewCoverageService(log, freq), freq, nil)

	svc := NewImportService(log, tx, h.projects, h.sections, h.standards, h.obligations,
		freq, compliance, nil, nil)
	// The harness shares one transaction handle, so the post-import
	// recalculation must not fan out.
	svc.(*importService).recalcWorkers = 1
	return context.Background(), svc, h
}

type importHarness struct {
	tx          *gorm.DB
	projects    repos.ProjectRepo
	sections    repos.SectionRepo
	standards   repos.StandardRepo
	obligations repos.ObligationRepo
}

func TestImportCSV(t *testing.T) {
	ctx, svc, h := newImportHarness(t)

	project := testutil.SeedProject(t, ctx, h.tx, "import target")

	report, err := svc.ImportCSV(ctx, project.ID, strings.NewReader(checklistCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Created != 4 {
		t.Fatalf("created = %d, want 4", report.Created)
	}
	if report.Updated != 0 {
		t.Fatalf("updated = %d, want 0", report.Updated)
	}
	if report.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", report.Skipped)
	}
	if len(report.RowErrors) != 1 || report.RowErrors[0].Line != 5 {
		t.Fatalf("row errors = %+v, want one error on line 5", report.RowErrors)
	}

	obs, err := h.obligations.ListByProject(ctx, h.tx, project.ID)
	if err != nil {
		t.Fatalf("list obligations: %v", err)
	}
	if len(obs) != 4 {
		t.Fatalf("stored obligations = %d, want 4", len(obs))
	}

	byReq := map[string]*types.Obligation{}
	for _, ob := range obs {
		byReq[ob.Requirement] = ob
	}

	quarterly := byReq["Board meets and documents minutes"]
	if quarterly.NormalizedFrequency != types.FreqQuarterly || quarterly.ScheduleKind != types.ScheduleRecurring {
		t.Fatalf("quarterly row resolved as (%s, %s)", quarterly.ScheduleKind, quarterly.NormalizedFrequency)
	}
	if quarterly.NextDueDate == nil {
		t.Fatal("quarterly row has no next due date")
	}
	if quarterly.Score != 10 {
		t.Fatalf("score = %d, want 10", quarterly.Score)
	}

	semi := byReq["Fire drill conducted"]
	if semi.NormalizedFrequency != types.FreqSemiAnnually {
		t.Fatalf("'every 6 months' resolved to %q, want %q", semi.NormalizedFrequency, types.FreqSemiAnnually)
	}

	oneTime := byReq["Incident register maintained"]
	if oneTime.ScheduleKind != types.ScheduleOneTime {
		t.Fatalf("'ongoing basis' resolved to %s, want one_time", oneTime.ScheduleKind)
	}

	// Section and standard labels are folded per batch: both Governance rows
	// share one section row.
	sections, err := h.sections.ListByProject(ctx, h.tx, project.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if report.SectionsCreated != 2 {
		t.Fatalf("sections created = %d, want 2", report.SectionsCreated)
	}
	if report.StandardsCreated != 2 {
		t.Fatalf("standards created = %d, want 2", report.StandardsCreated)
	}
}

func TestImportCSVRerunIsIdempotent(t *testing.T) {
	ctx, svc, h := newImportHarness(t)
	project := testutil.SeedProject(t, ctx, h.tx, "import rerun")

	first, err := svc.ImportCSV(ctx, project.ID, strings.NewReader(checklistCSV))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := svc.ImportCSV(ctx, project.ID, strings.NewReader(checklistCSV))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if second.Created != 0 {
		t.Fatalf("second run created = %d, want 0", second.Created)
	}
	if second.Updated != first.Created {
		t.Fatalf("second run updated = %d, want %d", second.Updated, first.Created)
	}

	obs, err := h.obligations.ListByProject(ctx, h.tx, project.ID)
	if err != nil {
		t.Fatalf("list obligations: %v", err)
	}
	if len(obs) != first.Created {
		t.Fatalf("stored obligations = %d, want %d", len(obs), first.Created)
	}
}

func TestImportCSVRejectsBadHeader(t *testing.T) {
	ctx, svc, h := newImportHarness(t)
	project := testutil.SeedProject(t, ctx, h.tx, "bad header")

	_, err := svc.ImportCSV(ctx, project.ID, strings.NewReader("Section,Standard\nGovernance,GV.1\n"))
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want %v", err, pkgerrors.ErrInvalidArgument)
	}

	obs, err := h.obligations.ListByProject(ctx, h.tx, project.ID)
	if err != nil {
		t.Fatalf("list obligations: %v", err)
	}
	if len(obs) != 0 {
		t.Fatalf("header failure still wrote %d obligations", len(obs))
	}
}

func TestImportCSVLineNumbersWithMultilineFields(t *testing.T) {
	ctx, svc, h := newImportHarness(t)
	project := testutil.SeedProject(t, ctx, h.tx, "multiline fields")

	// The quoted Indicator spans physical lines 2-3, so the bad row sits on
	// physical line 4, not record index 2.
	csvBody := "Section,Standard,Indicator,Evidence Required,Responsible Person,Frequency,Assigned to,Compliance Evidence,Score\n" +
		"Governance,GV.1,\"Board meets\nand documents minutes\",Minutes of meeting,Board Secretary,Quarterly,secretary@example.org,Minutes archive,10\n" +
		",,Missing coordinates row,,,Monthly,,,5\n"

	report, err := svc.ImportCSV(ctx, project.ID, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("created = %d, want 1", report.Created)
	}
	if len(report.RowErrors) != 1 || report.RowErrors[0].Line != 4 {
		t.Fatalf("row errors = %+v, want one error on line 4", report.RowErrors)
	}
}
