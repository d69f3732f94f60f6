package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func PtrTime(t time.Time) *time.Time { return &t }

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Project {
	tb.Helper()
	p := &types.Project{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, name string) *types.Section {
	tb.Helper()
	s := &types.Section{ID: uuid.New(), ProjectID: projectID, Name: name}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedStandard(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, name string) *types.Standard {
	tb.Helper()
	s := &types.Standard{ID: uuid.New(), SectionID: sectionID, Name: name}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed standard: %v", err)
	}
	return s
}

func SeedObligation(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, sectionID, standardID uuid.UUID, key string) *types.Obligation {
	tb.Helper()
	o := &types.Obligation{
		ID:               uuid.New(),
		ProjectID:        projectID,
		SectionID:        sectionID,
		StandardID:       standardID,
		IdentityKey:      key,
		Requirement:      "req " + key,
		ScheduleKind:     types.ScheduleOneTime,
		ComplianceStatus: types.StatusNotCompliant,
		Score:            10,
		Active:           true,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed obligation: %v", err)
	}
	return o
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, departmentID uuid.UUID) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:           uuid.New(),
		ProjectID:    projectID,
		DepartmentID: departmentID,
		StartDate:    Date(2024, time.January, 1),
		DueDate:      Date(2024, time.December, 31),
		Status:       types.AssignmentNotStarted,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, assignmentID, obligationID uuid.UUID) *types.AssignmentItem {
	tb.Helper()
	it := &types.AssignmentItem{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		ObligationID: obligationID,
		Status:       types.ItemNotStarted,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed assignment item: %v", err)
	}
	return it
}
