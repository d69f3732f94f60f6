package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/data/repos"
	"github.com/accredify/accredify-backend/internal/data/repos/testutil"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
)

func TestValidateSubmission(t *testing.T) {
	obID := uuid.New()
	base := SubmitEvidenceInput{
		ObligationID: obID,
		Title:        "quarterly minutes",
		Kind:         types.EvidenceFile,
		StorageKey:   "minutes/q1.pdf",
	}

	cases := []struct {
		name   string
		mutate func(*SubmitEvidenceInput)
		ok     bool
	}{
		{"file with storage key", func(in *SubmitEvidenceInput) {}, true},
		{"missing obligation", func(in *SubmitEvidenceInput) { in.ObligationID = uuid.Nil }, false},
		{"missing title", func(in *SubmitEvidenceInput) { in.Title = "" }, false},
		{"unknown kind", func(in *SubmitEvidenceInput) { in.Kind = "screenshot" }, false},
		{"file without storage key", func(in *SubmitEvidenceInput) { in.StorageKey = "" }, false},
		{"note requires note text", func(in *SubmitEvidenceInput) {
			in.Kind = types.EvidenceNote
			in.StorageKey = ""
		}, false},
		{"note with note text", func(in *SubmitEvidenceInput) {
			in.Kind = types.EvidenceNote
			in.StorageKey = ""
			in.Note = "declared compliant by audit committee"
		}, true},
		{"reference requires code", func(in *SubmitEvidenceInput) {
			in.Kind = types.EvidenceReference
			in.StorageKey = ""
		}, false},
		{"reference with code", func(in *SubmitEvidenceInput) {
			in.Kind = types.EvidenceReference
			in.StorageKey = ""
			in.ReferenceCode = "REG-2024-118"
		}, true},
		{"start without end", func(in *SubmitEvidenceInput) {
			in.PeriodStart = testutil.PtrTime(testutil.Date(2024, 1, 1))
		}, false},
		{"end without start", func(in *SubmitEvidenceInput) {
			in.PeriodEnd = testutil.PtrTime(testutil.Date(2024, 1, 31))
		}, false},
		{"end before start", func(in *SubmitEvidenceInput) {
			in.PeriodStart = testutil.PtrTime(testutil.Date(2024, 2, 1))
			in.PeriodEnd = testutil.PtrTime(testutil.Date(2024, 1, 1))
		}, false},
		{"valid period bounds", func(in *SubmitEvidenceInput) {
			in.PeriodStart = testutil.PtrTime(testutil.Date(2024, 1, 1))
			in.PeriodEnd = testutil.PtrTime(testutil.Date(2024, 1, 31))
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			err := validateSubmission(in)
			if tc.ok && err != nil {
				t.Fatalf("valid input rejected: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("invalid input accepted")
				}
				if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
					t.Fatalf("err = %v, want %v", err, pkgerrors.ErrInvalidArgument)
				}
			}
		})
	}
}

func TestSubmitUnknownObligation(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	freq := NewFrequencyService(log)

	obligations := repos.NewObligationRepo(tx, log)
	compliance := NewComplianceService(log, tx, obligations,
		repos.NewEvidenceRepo(tx, log), repos.NewPeriodRepo(tx, log),
		repos.NewAuditRepo(tx, log), NewCoverageService(log, freq), freq, nil)
	workflow := NewWorkflowService(log, tx, repos.NewItemRepo(tx, log),
		repos.NewAssignmentRepo(tx, log), repos.NewAuditRepo(tx, log))
	svc := NewEvidenceService(log, repos.NewEvidenceRepo(tx, log),
		repos.NewItemRepo(tx, log), obligations, compliance, workflow)

	_, err := svc.Submit(ctx, uuid.New(), SubmitEvidenceInput{
		ObligationID: uuid.New(),
		Title:        "orphan upload",
		Kind:         types.EvidenceFile,
		StorageKey:   "orphan/upload.pdf",
	})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, pkgerrors.ErrNotFound)
	}
}
