package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/model"
)

// IssueFilter narrows a search. Zero values are not applied.
type IssueFilter struct {
	Title      string
	Status     model.IssueStatus
	Priority   model.IssuePriority
	AssigneeID *uuid.UUID
	ReporterID *uuid.UUID
	Keywords   string
}

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create adds a new issue to the database
func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

// GetByID retrieves an issue by its ID, or nil if there is none
func (r *IssueRepository) GetByID(ctx context.Context, id uint) (*model.Issue, error) {
	var issue model.Issue
	result := r.db.WithContext(ctx).First(&issue, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &issue, nil
}

// List retrieves every issue, most recently created first
func (r *IssueRepository) List(ctx context.Context) ([]model.Issue, error) {
	return r.Search(ctx, IssueFilter{})
}

// Search retrieves the issues matching every supplied filter, most recently created first
func (r *IssueRepository) Search(ctx context.Context, filter IssueFilter) ([]model.Issue, error) {
	query := r.db.WithContext(ctx).Model(&model.Issue{})

	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, containsPattern(title))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.ReporterID != nil {
		query = query.Where("reporter_id = ?", *filter.ReporterID)
	}
	if keywords := strings.TrimSpace(filter.Keywords); keywords != "" {
		pattern := containsPattern(keywords)
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var issues []model.Issue
	if err := query.Order("created_at DESC").Order("id DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// Update writes the mutable columns of an issue. Reporter and links are never touched.
func (r *IssueRepository) Update(ctx context.Context, issue *model.Issue) error {
	result := r.db.WithContext(ctx).Model(&model.Issue{}).
		Where("id = ?", issue.ID).
		Updates(map[string]interface{}{
			"title":       issue.Title,
			"description": issue.Description,
			"status":      issue.Status,
			"priority":    issue.Priority,
			"assignee_id": issue.AssigneeID,
			"updated_at":  issue.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}

// Delete removes an issue by its ID
func (r *IssueRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Issue{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}

// CountByStatus groups issues by status. Only statuses present in the table are returned.
func (r *IssueRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var rows []model.StatusCount
	err := r.db.WithContext(ctx).Model(&model.Issue{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching v anywhere.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}
