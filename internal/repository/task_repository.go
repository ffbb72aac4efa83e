package repository

import (
	"context"
	"errors"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectTaskRepository struct {
	db *gorm.DB
}

func NewProjectTaskRepository(db *gorm.DB) *ProjectTaskRepository {
	return &ProjectTaskRepository{db: db}
}

// Create adds a new task to a project
func (r *ProjectTaskRepository) Create(ctx context.Context, task *model.ProjectTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a project task by its ID
func (r *ProjectTaskRepository) GetByID(ctx context.Context, id uint) (*model.ProjectTask, error) {
	var task model.ProjectTask
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListByProject retrieves all tasks of a project, oldest first
func (r *ProjectTaskRepository) ListByProject(ctx context.Context, projectID uint) ([]model.ProjectTask, error) {
	var tasks []model.ProjectTask
	result := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (r *ProjectTaskRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectTask{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

type IndependentTaskRepository struct {
	db *gorm.DB
}

func NewIndependentTaskRepository(db *gorm.DB) *IndependentTaskRepository {
	return &IndependentTaskRepository{db: db}
}

// Create adds a new standalone task
func (r *IndependentTaskRepository) Create(ctx context.Context, task *model.IndependentTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a standalone task by its ID
func (r *IndependentTaskRepository) GetByID(ctx context.Context, id uint) (*model.IndependentTask, error) {
	var task model.IndependentTask
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &task, nil
}

// List retrieves standalone tasks, newest first. A non-nil creator narrows the list.
func (r *IndependentTaskRepository) List(ctx context.Context, createdBy *uuid.UUID) ([]model.IndependentTask, error) {
	var tasks []model.IndependentTask
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if createdBy != nil {
		query = query.Where("created_by = ?", *createdBy)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *IndependentTaskRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.IndependentTask{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
