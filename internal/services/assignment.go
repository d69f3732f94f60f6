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

type CreateAssignmentInput struct {
	ProjectID    uuid.UUID `json:"project_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	StartDate    time.Time `json:"start_date"`
	DueDate      time.Time `json:"due_date"`
}

type AssignmentService interface {
	// Create opens a department checklist for a project and fans one item
	// out per active obligation, all in one transaction.
	Create(ctx context.Context, in CreateAssignmentInput) (*types.Assignment, []*types.AssignmentItem, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Assignment, []*types.AssignmentItem, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Assignment, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*types.Assignment, error)
}

type assignmentService struct {
	log         *logger.Logger
	db          *gorm.DB
	assignments repos.AssignmentRepo
	items       repos.ItemRepo
	obligations repos.ObligationRepo
}

func NewAssignmentService(
	log *logger.Logger,
	db *gorm.DB,
	assignments repos.AssignmentRepo,
	items repos.ItemRepo,
	obligations repos.ObligationRepo,
) AssignmentService {
	return &assignmentService{
		log:         log.With("service", "AssignmentService"),
		db:          db,
		assignments: assignments,
		items:       items,
		obligations: obligations,
	}
}

func (s *assignmentService) Create(ctx context.Context, in CreateAssignmentInput) (*types.Assignment, []*types.AssignmentItem, error) {
	if in.ProjectID == uuid.Nil || in.DepartmentID == uuid.Nil {
		return nil, nil, fmt.Errorf("project and department required: %w", pkgerrors.ErrInvalidArgument)
	}
	if in.DueDate.Before(in.StartDate) {
		return nil, nil, fmt.Errorf("due date before start date: %w", pkgerrors.ErrInvalidArgument)
	}

	var (
		asg   *types.Assignment
		items []*types.AssignmentItem
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		obligations, err := s.obligations.ListActiveByProject(ctx, tx, in.ProjectID)
		if err != nil {
			return err
		}
		if len(obligations) == 0 {
			return fmt.Errorf("project %s has no active obligations: %w", in.ProjectID, pkgerrors.ErrInvalidArgument)
		}

		asg, err = s.assignments.Create(ctx, tx, &types.Assignment{
			ProjectID:    in.ProjectID,
			DepartmentID: in.DepartmentID,
			StartDate:    in.StartDate,
			DueDate:      in.DueDate,
			Status:       types.AssignmentNotStarted,
		})
		if err != nil {
			return err
		}

		rows := make([]*types.AssignmentItem, 0, len(obligations))
		for _, ob := range obligations {
			rows = append(rows, &types.AssignmentItem{
				AssignmentID: asg.ID,
				ObligationID: ob.ID,
				Status:       types.ItemNotStarted,
			})
		}
		items, err = s.items.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("assignment created",
		"assignment_id", asg.ID,
		"project_id", in.ProjectID,
		"department_id", in.DepartmentID,
		"items", len(items),
	)
	return asg, items, nil
}

func (s *assignmentService) Get(ctx context.Context, id uuid.UUID) (*types.Assignment, []*types.AssignmentItem, error) {
	asg, err := s.assignments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	if asg == nil {
		return nil, nil, fmt.Errorf("assignment %s: %w", id, pkgerrors.ErrNotFound)
	}
	items, err := s.items.ListByAssignment(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	return asg, items, nil
}

func (s *assignmentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Assignment, error) {
	return s.assignments.ListByProject(ctx, nil, projectID)
}

func (s *assignmentService) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*types.Assignment, error) {
	return s.assignments.ListByDepartment(ctx, nil, departmentID)
}
