package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type SectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Section) (*types.Section, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Section, error)
	// FindByProjectAndNameFold does a case-insensitive name match, the
	// discipline the import reconciler relies on.
	FindByProjectAndNameFold(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, name string) (*types.Section, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Section, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Section) (*types.Section, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Section, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Section
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sectionRepo) FindByProjectAndNameFold(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, name string) (*types.Section, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Section
	if err := t.WithContext(ctx).
		Where("project_id = ? AND LOWER(name) = LOWER(?)", projectID, name).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sectionRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Section, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Section
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
