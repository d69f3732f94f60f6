package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type StandardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Standard) (*types.Standard, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Standard, error)
	FindBySectionAndNameFold(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, name string) (*types.Standard, error)
	ListBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Standard, error)
}

type standardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStandardRepo(db *gorm.DB, baseLog *logger.Logger) StandardRepo {
	return &standardRepo{db: db, log: baseLog.With("repo", "StandardRepo")}
}

func (r *standardRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Standard) (*types.Standard, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *standardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Standard, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Standard
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *standardRepo) FindBySectionAndNameFold(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, name string) (*types.Standard, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Standard
	if err := t.WithContext(ctx).
		Where("section_id = ? AND LOWER(name) = LOWER(?)", sectionID, name).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *standardRepo) ListBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Standard, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Standard
	if err := t.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
