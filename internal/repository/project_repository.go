package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// GetOwned returns the caller's projects, newest first. Offset/limit of -1
// disable pagination.
func (r *ProjectRepository) GetOwned(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// GetOwnedByID returns the project only if it belongs to ownerID. Rows
// owned by other users are indistinguishable from absent rows.
func (r *ProjectRepository) GetOwnedByID(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByID looks a project up regardless of owner. Used only by the task
// create/update validation, which reports ownership as a field error.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// Delete removes the project and its tasks if it belongs to ownerID.
func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Project{}).Select("id").Where("id = ? AND owner_id = ?", id, ownerID)
		if err := tx.Where("project_id IN (?)", owned).Delete(&model.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}
