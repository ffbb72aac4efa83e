package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// resolver turns issue rows into display records. Names are cached for the
// lifetime of one call so a list touching the same user twice loads it once.
// A related row that no longer exists resolves to an empty name.
type resolver struct {
	store repository.Store

	users            map[uuid.UUID]string
	projects         map[uint]string
	projectTasks     map[uint]string
	independentTasks map[uint]string
}

func newResolver(store repository.Store) *resolver {
	return &resolver{
		store:            store,
		users:            make(map[uuid.UUID]string),
		projects:         make(map[uint]string),
		projectTasks:     make(map[uint]string),
		independentTasks: make(map[uint]string),
	}
}

func (r *resolver) records(ctx context.Context, issues []model.Issue) ([]model.IssueRecord, error) {
	out := make([]model.IssueRecord, 0, len(issues))
	for i := range issues {
		rec, err := r.record(ctx, &issues[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *resolver) record(ctx context.Context, issue *model.Issue) (model.IssueRecord, error) {
	rec := model.IssueRecord{
		ID:                issue.ID,
		Title:             issue.Title,
		Description:       issue.Description,
		Status:            issue.Status,
		Priority:          issue.Priority,
		CreatedAt:         issue.CreatedAt,
		UpdatedAt:         issue.UpdatedAt,
		ReporterID:        issue.ReporterID,
		AssigneeID:        issue.AssigneeID,
		ProjectID:         issue.ProjectID,
		ProjectTaskID:     issue.ProjectTaskID,
		IndependentTaskID: issue.IndependentTaskID,
	}

	var err error
	if rec.ReporterName, err = r.userName(ctx, issue.ReporterID); err != nil {
		return rec, err
	}
	if issue.AssigneeID != nil {
		if rec.AssigneeName, err = r.userName(ctx, *issue.AssigneeID); err != nil {
			return rec, err
		}
	}
	if issue.ProjectID != nil {
		if rec.ProjectName, err = r.projectName(ctx, *issue.ProjectID); err != nil {
			return rec, err
		}
	}
	if issue.ProjectTaskID != nil {
		if rec.ProjectTaskTitle, err = r.projectTaskTitle(ctx, *issue.ProjectTaskID); err != nil {
			return rec, err
		}
	}
	if issue.IndependentTaskID != nil {
		if rec.IndependentTaskTitle, err = r.independentTaskTitle(ctx, *issue.IndependentTaskID); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func (r *resolver) userName(ctx context.Context, id uuid.UUID) (string, error) {
	if name, ok := r.users[id]; ok {
		return name, nil
	}
	user, err := r.store.Users().GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve user %s: %w", id, err)
	}
	var name string
	if user != nil {
		name = user.Username
	}
	r.users[id] = name
	return name, nil
}

func (r *resolver) projectName(ctx context.Context, id uint) (string, error) {
	if name, ok := r.projects[id]; ok {
		return name, nil
	}
	project, err := r.store.Projects().GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve project %d: %w", id, err)
	}
	var name string
	if project != nil {
		name = project.Name
	}
	r.projects[id] = name
	return name, nil
}

func (r *resolver) projectTaskTitle(ctx context.Context, id uint) (string, error) {
	if title, ok := r.projectTasks[id]; ok {
		return title, nil
	}
	task, err := r.store.ProjectTasks().GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve project task %d: %w", id, err)
	}
	var title string
	if task != nil {
		title = task.Title
	}
	r.projectTasks[id] = title
	return title, nil
}

func (r *resolver) independentTaskTitle(ctx context.Context, id uint) (string, error) {
	if title, ok := r.independentTasks[id]; ok {
		return title, nil
	}
	task, err := r.store.IndependentTasks().GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve independent task %d: %w", id, err)
	}
	var title string
	if task != nil {
		title = task.Title
	}
	r.independentTasks[id] = title
	return title, nil
}
