package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// ProjectSummary is the dashboard rollup for one project.
type ProjectSummary struct {
	ProjectID         uuid.UUID `json:"project_id"`
	TotalObligations  int64     `json:"total_obligations"`
	Compliant         int64     `json:"compliant"`
	InProcess         int64     `json:"in_process"`
	NotCompliant      int64     `json:"not_compliant"`
	CompliancePercent float64   `json:"compliance_percent"`
}

// DueSoonEntry is one obligation approaching its next due date.
type DueSoonEntry struct {
	Obligation *types.Obligation `json:"obligation"`
	DueInDays  int               `json:"due_in_days"`
}

type DashboardService interface {
	ProjectSummary(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error)
	// DueSoon lists active obligations whose next due date falls within the
	// given number of days from today, soonest first.
	DueSoon(ctx context.Context, projectID uuid.UUID, withinDays int) ([]DueSoonEntry, error)
}

type dashboardService struct {
	log         *logger.Logger
	projects    repos.ProjectRepo
	obligations repos.ObligationRepo
	now         func() time.Time
}

func NewDashboardService(log *logger.Logger, projects repos.ProjectRepo, obligations repos.ObligationRepo) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		projects:    projects,
		obligations: obligations,
		now:         time.Now,
	}
}

func (s *dashboardService) ProjectSummary(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error) {
	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, pkgerrors.ErrNotFound)
	}

	counts, err := s.obligations.CountByStatus(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	summary := &ProjectSummary{
		ProjectID:    projectID,
		Compliant:    counts[types.StatusCompliant],
		InProcess:    counts[types.StatusInProcess],
		NotCompliant: counts[types.StatusNotCompliant],
	}
	summary.TotalObligations = summary.Compliant + summary.InProcess + summary.NotCompliant
	if summary.TotalObligations > 0 {
		summary.CompliancePercent = float64(summary.Compliant) / float64(summary.TotalObligations) * 100
	}
	return summary, nil
}

func (s *dashboardService) DueSoon(ctx context.Context, projectID uuid.UUID, withinDays int) ([]DueSoonEntry, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	today := dateOnly(s.now())
	cutoff := today.AddDate(0, 0, withinDays)

	rows, err := s.obligations.ListDueWithin(ctx, nil, projectID, cutoff)
	if err != nil {
		return nil, err
	}

	entries := make([]DueSoonEntry, 0, len(rows))
	for _, ob := range rows {
		if ob.NextDueDate == nil {
			continue
		}
		days := int(dateOnly(*ob.NextDueDate).Sub(today).Hours() / 24)
		entries = append(entries, DueSoonEntry{Obligation: ob, DueInDays: days})
	}
	return entries, nil
}
