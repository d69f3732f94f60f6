package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// AuditRepo is append-only: no update or delete methods on purpose.
type AuditRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.StatusChangeAudit) (*types.StatusChangeAudit, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) ([]*types.StatusChangeAudit, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) (int64, error)
}

type auditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	return &auditRepo{db: db, log: baseLog.With("repo", "AuditRepo")}
}

func (r *auditRepo) Append(ctx context.Context, tx *gorm.DB, row *types.StatusChangeAudit) (*types.StatusChangeAudit, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) ([]*types.StatusChangeAudit, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.StatusChangeAudit
	if err := t.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *auditRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.StatusChangeAudit{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
