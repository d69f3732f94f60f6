package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AssignmentItem) ([]*types.AssignmentItem, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssignmentItem, error)
	GetByAssignmentAndObligation(ctx context.Context, tx *gorm.DB, assignmentID, obligationID uuid.UUID) (*types.AssignmentItem, error)
	// LockByID backs the check-then-set discipline of workflow transitions.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssignmentItem, error)
	ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.AssignmentItem, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{db: db, log: baseLog.With("repo", "ItemRepo")}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AssignmentItem) ([]*types.AssignmentItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AssignmentItem{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssignmentItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.AssignmentItem
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *itemRepo) GetByAssignmentAndObligation(ctx context.Context, tx *gorm.DB, assignmentID, obligationID uuid.UUID) (*types.AssignmentItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.AssignmentItem
	if err := t.WithContext(ctx).
		Where("assignment_id = ? AND obligation_id = ?", assignmentID, obligationID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *itemRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssignmentItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.AssignmentItem
	if err := forUpdate(t.WithContext(ctx)).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *itemRepo) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.AssignmentItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.AssignmentItem
	if err := t.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.AssignmentItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}
