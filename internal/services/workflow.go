package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// coordinatorTransitions is the working-side half of the item state machine:
// start, submit, recall, reset. Review outcomes live in reviewTransitions.
var coordinatorTransitions = map[types.ItemStatus][]types.ItemStatus{
	types.ItemNotStarted: {types.ItemInProgress},
	types.ItemInProgress: {types.ItemSubmitted, types.ItemNotStarted},
	types.ItemSubmitted:  {types.ItemInProgress},
}

// reviewTransitions gates the quality-admin outcomes. Verify and reject are
// only legal from Submitted, for every role.
var reviewTransitions = map[types.ItemStatus][]types.ItemStatus{
	types.ItemSubmitted: {types.ItemVerified, types.ItemRejected},
}

// completionFor is the coarse progress figure surfaced on dashboards.
var completionFor = map[types.ItemStatus]int{
	types.ItemNotStarted: 0,
	types.ItemInProgress: 50,
	types.ItemSubmitted:  90,
	types.ItemVerified:   100,
	types.ItemRejected:   50,
}

type WorkflowService interface {
	// Transition applies one role-gated status change to an assignment item,
	// appends an audit row, and recomputes the parent assignment's aggregate
	// status. Each accepted call appends exactly one audit row; calls are
	// not idempotent by design.
	Transition(ctx context.Context, caps Capabilities, itemID uuid.UUID, target types.ItemStatus, note string) (*types.AssignmentItem, error)
	// NoteEvidenceAdded auto-advances a NotStarted item to InProgress when
	// evidence lands on it. It never advances past InProgress.
	NoteEvidenceAdded(ctx context.Context, actorID uuid.UUID, itemID uuid.UUID) error
	// RecomputeAssignmentStatus re-derives the aggregate status from item
	// states. Idempotent; safe to invoke redundantly.
	RecomputeAssignmentStatus(ctx context.Context, assignmentID uuid.UUID) (types.AssignmentStatus, error)
	History(ctx context.Context, itemID uuid.UUID) ([]*types.StatusChangeAudit, error)
}

type workflowService struct {
	log         *logger.Logger
	db          *gorm.DB
	items       repos.ItemRepo
	assignments repos.AssignmentRepo
	audits      repos.AuditRepo
	now         func() time.Time
}

func NewWorkflowService(
	log *logger.Logger,
	db *gorm.DB,
	items repos.ItemRepo,
	assignments repos.AssignmentRepo,
	audits repos.AuditRepo,
) WorkflowService {
	return &workflowService{
		log:         log.With("service", "WorkflowService"),
		db:          db,
		items:       items,
		assignments: assignments,
		audits:      audits,
		now:         time.Now,
	}
}

func (s *workflowService) Transition(ctx context.Context, caps Capabilities, itemID uuid.UUID, target types.ItemStatus, note string) (*types.AssignmentItem, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("item status %q: %w", target, pkgerrors.ErrInvalidArgument)
	}

	var updated *types.AssignmentItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.items.LockByID(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("assignment item %s: %w", itemID, pkgerrors.ErrNotFound)
		}
		asg, err := s.assignments.GetByID(ctx, tx, item.AssignmentID)
		if err != nil {
			return err
		}
		if asg == nil {
			return fmt.Errorf("assignment %s: %w", item.AssignmentID, pkgerrors.ErrNotFound)
		}

		if err := gate(caps, asg.DepartmentID, item.Status, target); err != nil {
			return err
		}

		if err := s.applyTransition(ctx, tx, item, target, caps.UserID, note); err != nil {
			return err
		}
		if _, err := s.recompute(ctx, tx, asg); err != nil {
			return err
		}

		updated, err = s.items.GetByID(ctx, tx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// gate decides whether the actor may request target from current. Role
// shortfalls and illegal source/target pairs are distinct failures so the
// caller can render them differently.
func gate(caps Capabilities, departmentID uuid.UUID, current, target types.ItemStatus) error {
	var table map[types.ItemStatus][]types.ItemStatus
	switch target {
	case types.ItemVerified, types.ItemRejected:
		if !caps.QualityAdmin() {
			return fmt.Errorf("verify/reject requires quality admin: %w", pkgerrors.ErrPermissionDenied)
		}
		table = reviewTransitions
	default:
		if !caps.CoordinatorFor(departmentID) {
			return fmt.Errorf("transition requires coordinator for department %s: %w", departmentID, pkgerrors.ErrPermissionDenied)
		}
		table = coordinatorTransitions
	}
	for _, allowed := range table[current] {
		if allowed == target {
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", current, target, pkgerrors.ErrInvalidTransition)
}

func (s *workflowService) NoteEvidenceAdded(ctx context.Context, actorID uuid.UUID, itemID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.items.LockByID(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("assignment item %s: %w", itemID, pkgerrors.ErrNotFound)
		}
		if item.Status != types.ItemNotStarted {
			return nil
		}
		if err := s.applyTransition(ctx, tx, item, types.ItemInProgress, actorID, "auto-advanced on evidence submission"); err != nil {
			return err
		}
		asg, err := s.assignments.GetByID(ctx, tx, item.AssignmentID)
		if err != nil {
			return err
		}
		if asg == nil {
			return fmt.Errorf("assignment %s: %w", item.AssignmentID, pkgerrors.ErrNotFound)
		}
		_, err = s.recompute(ctx, tx, asg)
		return err
	})
}

func (s *workflowService) RecomputeAssignmentStatus(ctx context.Context, assignmentID uuid.UUID) (types.AssignmentStatus, error) {
	var status types.AssignmentStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		asg, err := s.assignments.LockByID(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if asg == nil {
			return fmt.Errorf("assignment %s: %w", assignmentID, pkgerrors.ErrNotFound)
		}
		status, err = s.recompute(ctx, tx, asg)
		return err
	})
	return status, err
}

func (s *workflowService) History(ctx context.Context, itemID uuid.UUID) ([]*types.StatusChangeAudit, error) {
	return s.audits.ListByEntity(ctx, nil, types.AuditEntityAssignmentItem, itemID)
}

func (s *workflowService) applyTransition(ctx context.Context, tx *gorm.DB, item *types.AssignmentItem, target types.ItemStatus, actorID uuid.UUID, note string) error {
	if _, err := s.audits.Append(ctx, tx, &types.StatusChangeAudit{
		EntityType: types.AuditEntityAssignmentItem,
		EntityID:   item.ID,
		OldStatus:  string(item.Status),
		NewStatus:  string(target),
		ActorID:    &actorID,
		Note:       note,
	}); err != nil {
		return err
	}
	now := s.now()
	if err := s.items.UpdateFields(ctx, tx, item.ID, map[string]interface{}{
		"status":             target,
		"completion_percent": completionFor[target],
		"last_updated_by":    actorID,
		"last_updated_at":    now,
	}); err != nil {
		return err
	}
	item.Status = target
	return nil
}

// recompute derives the assignment aggregate from its items: all verified
// wins, any submitted means review is pending, any movement at all means in
// progress, otherwise the stored status stands. No audit row; the aggregate
// is derived state.
func (s *workflowService) recompute(ctx context.Context, tx *gorm.DB, asg *types.Assignment) (types.AssignmentStatus, error) {
	items, err := s.items.ListByAssignment(ctx, tx, asg.ID)
	if err != nil {
		return "", err
	}

	status := aggregateStatus(items, asg.Status)
	if status != asg.Status {
		if err := s.assignments.UpdateStatus(ctx, tx, asg.ID, status); err != nil {
			return "", err
		}
	}
	return status, nil
}

func aggregateStatus(items []*types.AssignmentItem, current types.AssignmentStatus) types.AssignmentStatus {
	if len(items) == 0 {
		return current
	}
	allVerified := true
	anySubmitted := false
	anyStarted := false
	for _, it := range items {
		if it.Status != types.ItemVerified {
			allVerified = false
		}
		if it.Status == types.ItemSubmitted {
			anySubmitted = true
		}
		if it.Status != types.ItemNotStarted {
			anyStarted = true
		}
	}
	switch {
	case allVerified:
		return types.AssignmentVerified
	case anySubmitted:
		return types.AssignmentPendingReview
	case anyStarted:
		return types.AssignmentInProgress
	}
	return current
}
