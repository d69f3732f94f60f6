package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type PeriodRepo interface {
	// Upsert writes one materialized period row keyed on
	// (obligation_id, period_start, period_end), refreshing the actual
	// count and compliance flag on conflict.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.EvidencePeriod) error
	ListByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.EvidencePeriod, error)
	DeleteByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) error
}

type periodRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPeriodRepo(db *gorm.DB, baseLog *logger.Logger) PeriodRepo {
	return &periodRepo{db: db, log: baseLog.With("repo", "PeriodRepo")}
}

func (r *periodRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.EvidencePeriod) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "obligation_id"},
				{Name: "period_start"},
				{Name: "period_end"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"actual_count", "is_compliant", "updated_at"}),
		}).
		Create(row).Error
}

func (r *periodRepo) ListByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.EvidencePeriod, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.EvidencePeriod
	if err := t.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("period_start ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *periodRepo) DeleteByObligation(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Delete(&types.EvidencePeriod{}).Error
}
