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

func coordinatorCaps(dept uuid.UUID) Capabilities {
	return Capabilities{
		UserID: uuid.New(),
		Claims: []RoleClaim{{Role: RoleCoordinator, DepartmentID: &dept}},
	}
}

func qualityAdminCaps() Capabilities {
	return Capabilities{
		UserID: uuid.New(),
		Claims: []RoleClaim{{Role: RoleQualityAdmin}},
	}
}

func TestGateTransitionMatrix(t *testing.T) {
	dept := uuid.New()

	cases := []struct {
		name    string
		caps    Capabilities
		current types.ItemStatus
		target  types.ItemStatus
		wantErr error
	}{
		{"coordinator starts work", coordinatorCaps(dept), types.ItemNotStarted, types.ItemInProgress, nil},
		{"coordinator submits", coordinatorCaps(dept), types.ItemInProgress, types.ItemSubmitted, nil},
		{"coordinator recalls", coordinatorCaps(dept), types.ItemSubmitted, types.ItemInProgress, nil},
		{"coordinator resets", coordinatorCaps(dept), types.ItemInProgress, types.ItemNotStarted, nil},
		{"coordinator cannot skip to submitted", coordinatorCaps(dept), types.ItemNotStarted, types.ItemSubmitted, pkgerrors.ErrInvalidTransition},
		{"coordinator cannot verify", coordinatorCaps(dept), types.ItemSubmitted, types.ItemVerified, pkgerrors.ErrPermissionDenied},
		{"coordinator cannot verify from not started", coordinatorCaps(dept), types.ItemNotStarted, types.ItemVerified, pkgerrors.ErrPermissionDenied},
		{"coordinator cannot touch verified items", coordinatorCaps(dept), types.ItemVerified, types.ItemInProgress, pkgerrors.ErrInvalidTransition},
		{"quality admin verifies", qualityAdminCaps(), types.ItemSubmitted, types.ItemVerified, nil},
		{"quality admin rejects", qualityAdminCaps(), types.ItemSubmitted, types.ItemRejected, nil},
		{"quality admin cannot verify from not started", qualityAdminCaps(), types.ItemNotStarted, types.ItemVerified, pkgerrors.ErrInvalidTransition},
		{"quality admin cannot verify from in progress", qualityAdminCaps(), types.ItemInProgress, types.ItemVerified, pkgerrors.ErrInvalidTransition},
		{"quality admin cannot drive working transitions", qualityAdminCaps(), types.ItemNotStarted, types.ItemInProgress, pkgerrors.ErrPermissionDenied},
		{"wrong department is denied", coordinatorCaps(uuid.New()), types.ItemNotStarted, types.ItemInProgress, pkgerrors.ErrPermissionDenied},
		{"no claims at all", Capabilities{UserID: uuid.New()}, types.ItemNotStarted, types.ItemInProgress, pkgerrors.ErrPermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := gate(tc.caps, dept, tc.current, tc.target)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("gate(%s -> %s) = %v, want allowed", tc.current, tc.target, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("gate(%s -> %s) = %v, want %v", tc.current, tc.target, err, tc.wantErr)
			}
		})
	}
}

func TestSuperAdminHoldsBothGates(t *testing.T) {
	caps := Capabilities{UserID: uuid.New(), Claims: []RoleClaim{{Role: RoleSuperAdmin}}}
	dept := uuid.New()

	if err := gate(caps, dept, types.ItemNotStarted, types.ItemInProgress); err != nil {
		t.Fatalf("super admin denied coordinator transition: %v", err)
	}
	if err := gate(caps, dept, types.ItemSubmitted, types.ItemVerified); err != nil {
		t.Fatalf("super admin denied verify: %v", err)
	}
	// Role never overrides the matrix.
	if err := gate(caps, dept, types.ItemNotStarted, types.ItemVerified); !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Fatalf("got %v, want %v", err, pkgerrors.ErrInvalidTransition)
	}
}

func TestAggregateStatus(t *testing.T) {
	item := func(s types.ItemStatus) *types.AssignmentItem {
		return &types.AssignmentItem{Status: s}
	}

	cases := []struct {
		name    string
		items   []*types.AssignmentItem
		current types.AssignmentStatus
		want    types.AssignmentStatus
	}{
		{"all verified wins", []*types.AssignmentItem{item(types.ItemVerified), item(types.ItemVerified)}, types.AssignmentPendingReview, types.AssignmentVerified},
		{"any submitted pends review", []*types.AssignmentItem{item(types.ItemVerified), item(types.ItemSubmitted)}, types.AssignmentInProgress, types.AssignmentPendingReview},
		{"any movement is in progress", []*types.AssignmentItem{item(types.ItemInProgress), item(types.ItemNotStarted)}, types.AssignmentNotStarted, types.AssignmentInProgress},
		{"rejected still counts as started", []*types.AssignmentItem{item(types.ItemRejected), item(types.ItemNotStarted)}, types.AssignmentNotStarted, types.AssignmentInProgress},
		{"nothing started stays put", []*types.AssignmentItem{item(types.ItemNotStarted)}, types.AssignmentNotStarted, types.AssignmentNotStarted},
		{"no items keeps current", nil, types.AssignmentInProgress, types.AssignmentInProgress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := aggregateStatus(tc.items, tc.current); got != tc.want {
				t.Fatalf("aggregateStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTransitionLifecycle(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	ctx := context.Background()

	items := repos.NewItemRepo(tx, log)
	assignments := repos.NewAssignmentRepo(tx, log)
	audits := repos.NewAuditRepo(tx, log)
	svc := NewWorkflowService(log, tx, items, assignments, audits)

	p := testutil.SeedProject(t, ctx, tx, "workflow lifecycle")
	sec := testutil.SeedSection(t, ctx, tx, p.ID, "HR")
	std := testutil.SeedStandard(t, ctx, tx, sec.ID, "HR.3")
	ob := testutil.SeedObligation(t, ctx, tx, p.ID, sec.ID, std.ID, "wf-1")

	dept := uuid.New()
	asg := testutil.SeedAssignment(t, ctx, tx, p.ID, dept)
	item := testutil.SeedItem(t, ctx, tx, asg.ID, ob.ID)

	coord := coordinatorCaps(dept)
	qa := qualityAdminCaps()

	got, err := svc.Transition(ctx, coord, item.ID, types.ItemInProgress, "starting")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.Status != types.ItemInProgress {
		t.Fatalf("status = %s, want %s", got.Status, types.ItemInProgress)
	}

	if _, err := svc.Transition(ctx, coord, item.ID, types.ItemSubmitted, "done"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// One item submitted, so the assignment is pending review.
	parent, err := assignments.GetByID(ctx, tx, asg.ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if parent.Status != types.AssignmentPendingReview {
		t.Fatalf("assignment status = %s, want %s", parent.Status, types.AssignmentPendingReview)
	}

	got, err = svc.Transition(ctx, qa, item.ID, types.ItemVerified, "checked")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.CompletionPercent != 100 {
		t.Fatalf("completion = %d, want 100", got.CompletionPercent)
	}

	parent, err = assignments.GetByID(ctx, tx, asg.ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if parent.Status != types.AssignmentVerified {
		t.Fatalf("assignment status = %s, want %s", parent.Status, types.AssignmentVerified)
	}

	history, err := svc.History(ctx, item.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("audit rows = %d, want 3", len(history))
	}
}

func TestNoteEvidenceAddedAutoAdvance(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	ctx := context.Background()

	items := repos.NewItemRepo(tx, log)
	assignments := repos.NewAssignmentRepo(tx, log)
	audits := repos.NewAuditRepo(tx, log)
	svc := NewWorkflowService(log, tx, items, assignments, audits)

	p := testutil.SeedProject(t, ctx, tx, "auto advance")
	sec := testutil.SeedSection(t, ctx, tx, p.ID, "IT")
	std := testutil.SeedStandard(t, ctx, tx, sec.ID, "IT.1")
	ob := testutil.SeedObligation(t, ctx, tx, p.ID, sec.ID, std.ID, "wf-auto")
	asg := testutil.SeedAssignment(t, ctx, tx, p.ID, uuid.New())
	item := testutil.SeedItem(t, ctx, tx, asg.ID, ob.ID)

	actor := uuid.New()
	if err := svc.NoteEvidenceAdded(ctx, actor, item.ID); err != nil {
		t.Fatalf("auto advance: %v", err)
	}
	got, err := items.GetByID(ctx, tx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Status != types.ItemInProgress {
		t.Fatalf("status = %s, want %s", got.Status, types.ItemInProgress)
	}

	// Never advances past InProgress: a second evidence drop is a no-op.
	if err := svc.NoteEvidenceAdded(ctx, actor, item.ID); err != nil {
		t.Fatalf("repeat auto advance: %v", err)
	}
	got, err = items.GetByID(ctx, tx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Status != types.ItemInProgress {
		t.Fatalf("status after repeat = %s, want %s", got.Status, types.ItemInProgress)
	}

	history, err := svc.History(ctx, item.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(history))
	}
}
