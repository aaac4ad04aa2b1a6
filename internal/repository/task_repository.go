package repository

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter holds filtering, ordering and pagination options for listing
// tasks. Ordering accepts the whitelisted field names, prefixed with "-"
// for descending order.
type TaskFilter struct {
	ProjectID *uuid.UUID
	Status    string
	Priority  string
	Search    string
	Ordering  string
	Offset    int
	Limit     int
}

// Columns permitted in the ordering parameter.
var orderableColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"due_date":   "due_date",
	"priority":   "priority",
}

// ownedProjects is the scoping subquery: ids of projects owned by ownerID.
func (r *TaskRepository) ownedProjects(ownerID uuid.UUID) *gorm.DB {
	return r.db.Model(&model.Project{}).Select("id").Where("owner_id = ?", ownerID)
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// GetOwnedByID retrieves a task whose project is owned by ownerID. The
// ownership filter is part of the query, so another user's task is
// reported as not found.
func (r *TaskRepository) GetOwnedByID(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("id = ? AND project_id IN (?)", id, r.ownedProjects(ownerID)).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks from projects owned by ownerID, filtered and
// ordered per the filter.
func (r *TaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).
		Preload("Project").
		Where("project_id IN (?)", r.ownedProjects(ownerID))

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	query = query.Order(orderClause(filter.Ordering))

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var tasks []model.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// orderClause maps an ordering parameter to an ORDER BY clause, falling
// back to newest-first. Ties are broken by id for a stable order.
func orderClause(ordering string) string {
	direction := "ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		field = ordering[1:]
	}

	column, ok := orderableColumns[field]
	if !ok {
		return "created_at DESC, id DESC"
	}
	return column + " " + direction + ", id DESC"
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete removes a task whose project is owned by ownerID
func (r *TaskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND project_id IN (?)", id, r.ownedProjects(ownerID)).
		Delete(&model.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
