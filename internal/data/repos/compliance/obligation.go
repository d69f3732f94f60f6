package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type ObligationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Obligation) ([]*types.Obligation, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Obligation, error)
	GetByIdentityKey(ctx context.Context, tx *gorm.DB, key string) (*types.Obligation, error)
	// LockByID acquires a FOR UPDATE row lock; callers use it to serialize
	// the read-derive-write of compliance status. Only meaningful inside a
	// transaction.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Obligation, error)

	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Obligation, error)
	ListActiveByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Obligation, error)
	ListDueWithin(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, by time.Time) ([]*types.Obligation, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (map[types.ComplianceStatus]int64, error)

	Update(ctx context.Context, tx *gorm.DB, row *types.Obligation) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type obligationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObligationRepo(db *gorm.DB, baseLog *logger.Logger) ObligationRepo {
	return &obligationRepo{db: db, log: baseLog.With("repo", "ObligationRepo")}
}

func (r *obligationRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Obligation) ([]*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Obligation{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *obligationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Obligation
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *obligationRepo) GetByIdentityKey(ctx context.Context, tx *gorm.DB, key string) (*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if key == "" {
		return nil, nil
	}
	var out []*types.Obligation
	if err := t.WithContext(ctx).Where("identity_key = ?", key).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// forUpdate applies a FOR UPDATE row lock on drivers that support it. The
// sqlite dev driver serializes writers globally, so the clause is skipped
// there.
func forUpdate(t *gorm.DB) *gorm.DB {
	if t.Dialector.Name() == "sqlite" {
		return t
	}
	return t.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *obligationRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Obligation
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

func (r *obligationRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Obligation
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *obligationRepo) ListActiveByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Obligation
	if err := t.WithContext(ctx).
		Where("project_id = ? AND active = ?", projectID, true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *obligationRepo) ListDueWithin(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, by time.Time) ([]*types.Obligation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Obligation
	if err := t.WithContext(ctx).
		Where("project_id = ? AND active = ? AND next_due_date IS NOT NULL AND next_due_date <= ?", projectID, true, by).
		Order("next_due_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *obligationRepo) CountByStatus(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (map[types.ComplianceStatus]int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	type bucket struct {
		ComplianceStatus types.ComplianceStatus
		N                int64
	}
	var buckets []bucket
	if err := t.WithContext(ctx).
		Model(&types.Obligation{}).
		Select("compliance_status, COUNT(*) AS n").
		Where("project_id = ? AND active = ?", projectID, true).
		Group("compliance_status").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	out := make(map[types.ComplianceStatus]int64, len(buckets))
	for _, b := range buckets {
		out[b.ComplianceStatus] = b.N
	}
	return out, nil
}

func (r *obligationRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Obligation) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Save(row).Error
}

func (r *obligationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Obligation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *obligationRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Obligation{}).Error
}
