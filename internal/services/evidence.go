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

// SubmitEvidenceInput is one evidence submission. StorageKey points at the
// external object store; this service never touches file bytes.
type SubmitEvidenceInput struct {
	ObligationID     uuid.UUID          `json:"obligation_id"`
	AssignmentItemID *uuid.UUID         `json:"assignment_item_id,omitempty"`
	Title            string             `json:"title"`
	Kind             types.EvidenceKind `json:"kind"`
	StorageKey       string             `json:"storage_key,omitempty"`
	Description      string             `json:"description,omitempty"`
	Note             string             `json:"note,omitempty"`
	ReferenceCode    string             `json:"reference_code,omitempty"`
	PeriodStart      *time.Time         `json:"period_start,omitempty"`
	PeriodEnd        *time.Time         `json:"period_end,omitempty"`
}

type EvidenceService interface {
	// Submit validates and stores one evidence record, auto-advances the
	// linked assignment item when there is one, and recomputes the
	// obligation's compliance status.
	Submit(ctx context.Context, submitterID uuid.UUID, in SubmitEvidenceInput) (*types.EvidenceRecord, error)
	ListByObligation(ctx context.Context, obligationID uuid.UUID) ([]*types.EvidenceRecord, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*types.EvidenceRecord, error)
	// CorrectMetadata fixes title/description/note on an existing record.
	// Period bounds and kind are immutable after submission.
	CorrectMetadata(ctx context.Context, id uuid.UUID, title, description, note string) error
}

type evidenceService struct {
	log         *logger.Logger
	evidence    repos.EvidenceRepo
	items       repos.ItemRepo
	obligations repos.ObligationRepo
	compliance  ComplianceService
	workflow    WorkflowService
	now         func() time.Time
}

func NewEvidenceService(
	log *logger.Logger,
	evidence repos.EvidenceRepo,
	items repos.ItemRepo,
	obligations repos.ObligationRepo,
	compliance ComplianceService,
	workflow WorkflowService,
) EvidenceService {
	return &evidenceService{
		log:         log.With("service", "EvidenceService"),
		evidence:    evidence,
		items:       items,
		obligations: obligations,
		compliance:  compliance,
		workflow:    workflow,
		now:         time.Now,
	}
}

func (s *evidenceService) Submit(ctx context.Context, submitterID uuid.UUID, in SubmitEvidenceInput) (*types.EvidenceRecord, error) {
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	ob, err := s.obligations.GetByID(ctx, nil, in.ObligationID)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, fmt.Errorf("obligation %s: %w", in.ObligationID, pkgerrors.ErrNotFound)
	}

	if in.AssignmentItemID != nil {
		item, err := s.items.GetByID(ctx, nil, *in.AssignmentItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("assignment item %s: %w", *in.AssignmentItemID, pkgerrors.ErrNotFound)
		}
		if item.ObligationID != in.ObligationID {
			return nil, fmt.Errorf("assignment item %s does not belong to obligation %s: %w",
				*in.AssignmentItemID, in.ObligationID, pkgerrors.ErrInvalidArgument)
		}
	}

	rec := &types.EvidenceRecord{
		ObligationID:     in.ObligationID,
		AssignmentItemID: in.AssignmentItemID,
		Title:            in.Title,
		Kind:             in.Kind,
		StorageKey:       in.StorageKey,
		Description:      in.Description,
		Note:             in.Note,
		ReferenceCode:    in.ReferenceCode,
		PeriodStart:      in.PeriodStart,
		PeriodEnd:        in.PeriodEnd,
		SubmittedBy:      &submitterID,
		SubmittedAt:      s.now(),
	}
	rec, err = s.evidence.Create(ctx, nil, rec)
	if err != nil {
		return nil, err
	}

	if in.AssignmentItemID != nil {
		if err := s.workflow.NoteEvidenceAdded(ctx, submitterID, *in.AssignmentItemID); err != nil {
			return nil, err
		}
	}

	// Recalculate is the row-locked derive-and-write from the compliance
	// service; two concurrent submissions serialize there, not here.
	if _, err := s.compliance.Recalculate(ctx, in.ObligationID); err != nil {
		return nil, err
	}
	return rec, nil
}

func validateSubmission(in SubmitEvidenceInput) error {
	if in.ObligationID == uuid.Nil {
		return fmt.Errorf("obligation id required: %w", pkgerrors.ErrInvalidArgument)
	}
	if in.Title == "" {
		return fmt.Errorf("title required: %w", pkgerrors.ErrInvalidArgument)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("evidence kind %q: %w", in.Kind, pkgerrors.ErrInvalidArgument)
	}
	if (in.PeriodStart == nil) != (in.PeriodEnd == nil) {
		return fmt.Errorf("period bounds must be given together: %w", pkgerrors.ErrInvalidArgument)
	}
	if in.PeriodStart != nil && in.PeriodEnd.Before(*in.PeriodStart) {
		return fmt.Errorf("period end before period start: %w", pkgerrors.ErrInvalidArgument)
	}
	switch in.Kind {
	case types.EvidenceFile, types.EvidenceForm:
		if in.StorageKey == "" {
			return fmt.Errorf("storage key required for %s evidence: %w", in.Kind, pkgerrors.ErrInvalidArgument)
		}
	case types.EvidenceNote:
		if in.Note == "" {
			return fmt.Errorf("note required for note evidence: %w", pkgerrors.ErrInvalidArgument)
		}
	case types.EvidenceReference:
		if in.ReferenceCode == "" {
			return fmt.Errorf("reference code required for reference evidence: %w", pkgerrors.ErrInvalidArgument)
		}
	}
	return nil
}

func (s *evidenceService) ListByObligation(ctx context.Context, obligationID uuid.UUID) ([]*types.EvidenceRecord, error) {
	return s.evidence.ListByObligation(ctx, nil, obligationID)
}

func (s *evidenceService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*types.EvidenceRecord, error) {
	return s.evidence.ListByItem(ctx, nil, itemID)
}

func (s *evidenceService) CorrectMetadata(ctx context.Context, id uuid.UUID, title, description, note string) error {
	rec, err := s.evidence.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("evidence %s: %w", id, pkgerrors.ErrNotFound)
	}
	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if description != "" {
		updates["description"] = description
	}
	if note != "" {
		updates["note"] = note
	}
	if len(updates) == 0 {
		return nil
	}
	return s.evidence.UpdateFields(ctx, nil, id, updates)
}
