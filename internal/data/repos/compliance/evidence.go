package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type EvidenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.EvidenceRecord) (*types.EvidenceRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EvidenceRecord, error)
	ListByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.EvidenceRecord, error)
	ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]*types.EvidenceRecord, error)
	CountByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) (int64, error)
	CountByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
	// UpdateFields covers metadata corrections only; evidence rows are
	// otherwise immutable.
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type evidenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
	return &evidenceRepo{db: db, log: baseLog.With("repo", "EvidenceRepo")}
}

func (r *evidenceRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EvidenceRecord) (*types.EvidenceRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *evidenceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EvidenceRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.EvidenceRecord
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *evidenceRepo) ListByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.EvidenceRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.EvidenceRecord
	if err := t.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("submitted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evidenceRepo) ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]*types.EvidenceRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.EvidenceRecord
	if err := t.WithContext(ctx).
		Where("assignment_item_id = ?", itemID).
		Order("submitted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evidenceRepo) CountByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.EvidenceRecord{}).
		Where("obligation_id = ?", obligationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *evidenceRepo) CountByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.EvidenceRecord{}).
		Where("assignment_item_id = ?", itemID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *evidenceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.EvidenceRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}
