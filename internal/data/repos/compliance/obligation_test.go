package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/data/repos/testutil"
	types "github.com/accredify/accredify-backend/internal/domain"
)

func TestObligationIdentityKeyLookup(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := NewObligationRepo(db, log)

	project := testutil.SeedProject(t, ctx, tx, "identity key lookup")
	section := testutil.SeedSection(t, ctx, tx, project.ID, "Governance")
	standard := testutil.SeedStandard(t, ctx, tx, section.ID, "GOV.1")
	seeded := testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "key-lookup-1")

	got, err := repo.GetByIdentityKey(ctx, tx, "key-lookup-1")
	if err != nil {
		t.Fatalf("GetByIdentityKey: %v", err)
	}
	if got == nil || got.ID != seeded.ID {
		t.Fatalf("expected obligation %s, got %+v", seeded.ID, got)
	}

	missing, err := repo.GetByIdentityKey(ctx, tx, "no-such-key")
	if err != nil {
		t.Fatalf("GetByIdentityKey missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown key, got %+v", missing)
	}
}

func TestObligationUpdateFields(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := NewObligationRepo(db, log)

	project := testutil.SeedProject(t, ctx, tx, "update fields")
	section := testutil.SeedSection(t, ctx, tx, project.ID, "Clinical")
	standard := testutil.SeedStandard(t, ctx, tx, section.ID, "CL.2")
	ob := testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "update-fields-1")

	due := testutil.Date(2024, time.June, 30)
	err := repo.UpdateFields(ctx, tx, ob.ID, map[string]interface{}{
		"compliance_status": types.StatusCompliant,
		"next_due_date":     due,
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, ob.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ComplianceStatus != types.StatusCompliant {
		t.Fatalf("status = %s, want %s", got.ComplianceStatus, types.StatusCompliant)
	}
	if got.NextDueDate == nil || !got.NextDueDate.Equal(due) {
		t.Fatalf("next due date = %v, want %v", got.NextDueDate, due)
	}
}

func TestObligationSoftDeleteHidesFromLists(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := NewObligationRepo(db, log)

	project := testutil.SeedProject(t, ctx, tx, "soft delete")
	section := testutil.SeedSection(t, ctx, tx, project.ID, "Safety")
	standard := testutil.SeedStandard(t, ctx, tx, section.ID, "SF.1")
	keep := testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "soft-delete-keep")
	drop := testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "soft-delete-drop")

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{drop.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}

	rows, err := repo.ListByProject(ctx, tx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != keep.ID {
		t.Fatalf("expected only %s to survive, got %d rows", keep.ID, len(rows))
	}

	gone, err := repo.GetByID(ctx, tx, drop.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if gone != nil {
		t.Fatalf("soft-deleted row still visible: %+v", gone)
	}
}

func TestObligationCountByStatus(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := NewObligationRepo(db, log)

	project := testutil.SeedProject(t, ctx, tx, "count by status")
	section := testutil.SeedSection(t, ctx, tx, project.ID, "HR")
	standard := testutil.SeedStandard(t, ctx, tx, section.ID, "HR.1")

	a := testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "count-1")
	testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "count-2")
	testutil.SeedObligation(t, ctx, tx, project.ID, section.ID, standard.ID, "count-3")

	if err := repo.UpdateFields(ctx, tx, a.ID, map[string]interface{}{"compliance_status": types.StatusCompliant}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	counts, err := repo.CountByStatus(ctx, tx, project.ID)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[types.StatusCompliant] != 1 {
		t.Fatalf("compliant = %d, want 1", counts[types.StatusCompliant])
	}
	if counts[types.StatusNotCompliant] != 2 {
		t.Fatalf("not compliant = %d, want 2", counts[types.StatusNotCompliant])
	}
}

func TestSectionNameFoldScopedToProject(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := NewSectionRepo(db, log)

	projectA := testutil.SeedProject(t, ctx, tx, "fold scope a")
	projectB := testutil.SeedProject(t, ctx, tx, "fold scope b")
	section := testutil.SeedSection(t, ctx, tx, projectA.ID, "Medication Management")

	got, err := repo.FindByProjectAndNameFold(ctx, tx, projectA.ID, "  medication management  ")
	if err != nil {
		t.Fatalf("FindByProjectAndNameFold: %v", err)
	}
	// exact fold match only on case, whitespace differences miss
	if got != nil {
		t.Fatalf("expected miss on padded name, got %+v", got)
	}

	got, err = repo.FindByProjectAndNameFold(ctx, tx, projectA.ID, "MEDICATION MANAGEMENT")
	if err != nil {
		t.Fatalf("FindByProjectAndNameFold: %v", err)
	}
	if got == nil || got.ID != section.ID {
		t.Fatalf("expected section %s on case-folded match, got %+v", section.ID, got)
	}

	other, err := repo.FindByProjectAndNameFold(ctx, tx, projectB.ID, "Medication Management")
	if err != nil {
		t.Fatalf("FindByProjectAndNameFold other project: %v", err)
	}
	if other != nil {
		t.Fatalf("match must be scoped to its project, got %+v", other)
	}
}
