package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Assignment) (*types.Assignment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Assignment, error)
	ListByDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID) ([]*types.Assignment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.AssignmentStatus) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Assignment) (*types.Assignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Assignment
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// forUpdate applies a FOR UPDATE row lock on drivers that support it; the
// sqlite dev driver serializes writers globally, so the clause is skipped.
func forUpdate(t *gorm.DB) *gorm.DB {
	if t.Dialector.Name() == "sqlite" {
		return t
	}
	return t.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *assignmentRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Assignment
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

func (r *assignmentRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Assignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Assignment
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) ListByDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID) ([]*types.Assignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Assignment
	if err := t.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.AssignmentStatus) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Assignment{}).
		Where("id = ?", id).
		Update("status", status).Error
}
