package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// CreateIssueInput carries the caller-supplied fields of a new issue. The
// reporter is passed separately and comes from the authenticated caller.
type CreateIssueInput struct {
	Title             string
	Description       string
	Status            model.IssueStatus
	Priority          model.IssuePriority
	AssigneeID        *uuid.UUID
	ProjectID         *uint
	ProjectTaskID     *uint
	IndependentTaskID *uint
}

// IssuePatch is a partial update. Title and Description apply only when set
// to a non-blank value. Status and Priority apply when set. AssigneeID applies
// whenever set; a nil value clears the assignee.
type IssuePatch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[model.IssueStatus]
	Priority    Optional[model.IssuePriority]
	AssigneeID  Optional[*uuid.UUID]
}

// SearchCriteria filters issues. Blank fields match everything.
type SearchCriteria struct {
	Title      string
	Status     model.IssueStatus
	Priority   model.IssuePriority
	AssigneeID *uuid.UUID
	ReporterID *uuid.UUID
	Keywords   string
}

type Option func(*IssueService)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) { s.now = now }
}

// IssueService owns the issue lifecycle: it checks that every referenced row
// exists before writing and presents issues with related names resolved.
//
// Lookups that find nothing return a nil record and a nil error.
type IssueService struct {
	store repository.Store
	now   func() time.Time
}

func NewIssueService(store repository.Store, opts ...Option) *IssueService {
	s := &IssueService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IssueService) Create(ctx context.Context, reporterID uuid.UUID, in CreateIssueInput) (*model.IssueRecord, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}

	status := in.Status
	if status == "" {
		status = model.IssueStatusOpen
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	priority := in.Priority
	if priority == "" {
		priority = model.IssuePriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	var record *model.IssueRecord
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkCreateReferences(ctx, tx, reporterID, in); err != nil {
			return err
		}

		now := s.now()
		issue := &model.Issue{
			Title:             in.Title,
			Description:       in.Description,
			Status:            status,
			Priority:          priority,
			ReporterID:        reporterID,
			AssigneeID:        in.AssigneeID,
			ProjectID:         in.ProjectID,
			ProjectTaskID:     in.ProjectTaskID,
			IndependentTaskID: in.IndependentTaskID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.Issues().Create(ctx, issue); err != nil {
			return fmt.Errorf("create issue: %w", err)
		}

		r, err := newResolver(tx).record(ctx, issue)
		if err != nil {
			return err
		}
		record = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// checkCreateReferences verifies, in order, every relationship of a new issue.
func checkCreateReferences(ctx context.Context, tx repository.Store, reporterID uuid.UUID, in CreateIssueInput) error {
	ok, err := tx.Users().Exists(ctx, reporterID)
	if err != nil {
		return fmt.Errorf("check reporter: %w", err)
	}
	if !ok {
		return ErrReporterNotFound
	}

	if in.AssigneeID != nil {
		if err := checkAssignee(ctx, tx, *in.AssigneeID); err != nil {
			return err
		}
	}

	if in.ProjectID != nil {
		ok, err := tx.Projects().Exists(ctx, *in.ProjectID)
		if err != nil {
			return fmt.Errorf("check project: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: id %d", ErrProjectNotFound, *in.ProjectID)
		}
	}

	if in.ProjectTaskID != nil {
		ok, err := tx.ProjectTasks().Exists(ctx, *in.ProjectTaskID)
		if err != nil {
			return fmt.Errorf("check project task: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: id %d", ErrProjectTaskNotFound, *in.ProjectTaskID)
		}
	}

	if in.IndependentTaskID != nil {
		ok, err := tx.IndependentTasks().Exists(ctx, *in.IndependentTaskID)
		if err != nil {
			return fmt.Errorf("check independent task: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: id %d", ErrIndependentTaskNotFound, *in.IndependentTaskID)
		}
	}
	return nil
}

func checkAssignee(ctx context.Context, tx repository.Store, id uuid.UUID) error {
	ok, err := tx.Users().Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check assignee: %w", err)
	}
	if !ok {
		return ErrAssigneeNotFound
	}
	return nil
}

func (s *IssueService) Get(ctx context.Context, id uint) (*model.IssueRecord, error) {
	issue, err := s.store.Issues().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	if issue == nil {
		return nil, nil
	}

	record, err := newResolver(s.store).record(ctx, issue)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns every issue, most recently created first.
func (s *IssueService) List(ctx context.Context) ([]model.IssueRecord, error) {
	issues, err := s.store.Issues().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return newResolver(s.store).records(ctx, issues)
}

func (s *IssueService) Update(ctx context.Context, id uint, patch IssuePatch) (*model.IssueRecord, error) {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, patch.Status.Value)
	}
	if patch.Priority.Set && !patch.Priority.Value.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, patch.Priority.Value)
	}

	var record *model.IssueRecord
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		issue, err := tx.Issues().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get issue %d: %w", id, err)
		}
		if issue == nil {
			return nil
		}

		if patch.AssigneeID.Set && patch.AssigneeID.Value != nil {
			if err := checkAssignee(ctx, tx, *patch.AssigneeID.Value); err != nil {
				return err
			}
		}
		applyPatch(issue, patch)

		now := s.now()
		if now.Before(issue.CreatedAt) {
			now = issue.CreatedAt
		}
		issue.UpdatedAt = now

		if err := tx.Issues().Update(ctx, issue); err != nil {
			if errors.Is(err, repository.ErrIssueNotFound) {
				return nil
			}
			return fmt.Errorf("update issue %d: %w", id, err)
		}

		r, err := newResolver(tx).record(ctx, issue)
		if err != nil {
			return err
		}
		record = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func applyPatch(issue *model.Issue, patch IssuePatch) {
	if patch.Title.Set && strings.TrimSpace(patch.Title.Value) != "" {
		issue.Title = patch.Title.Value
	}
	if patch.Description.Set && strings.TrimSpace(patch.Description.Value) != "" {
		issue.Description = patch.Description.Value
	}
	if patch.Status.Set {
		issue.Status = patch.Status.Value
	}
	if patch.Priority.Set {
		issue.Priority = patch.Priority.Value
	}
	if patch.AssigneeID.Set {
		issue.AssigneeID = patch.AssigneeID.Value
	}
}

// Delete permanently removes an issue and reports the state it had just before.
func (s *IssueService) Delete(ctx context.Context, id uint) (*model.IssueDeletion, error) {
	var deletion *model.IssueDeletion
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		issue, err := tx.Issues().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get issue %d: %w", id, err)
		}
		if issue == nil {
			return nil
		}

		if err := tx.Issues().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrIssueNotFound) {
				return nil
			}
			return fmt.Errorf("delete issue %d: %w", id, err)
		}

		deletion = &model.IssueDeletion{
			ID:        issue.ID,
			Title:     issue.Title,
			Status:    issue.Status,
			Message:   fmt.Sprintf("Issue '%s' (ID: %d) has been deleted successfully.", issue.Title, issue.ID),
			DeletedAt: s.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deletion, nil
}

func (s *IssueService) Search(ctx context.Context, criteria SearchCriteria) ([]model.IssueRecord, error) {
	if criteria.Status != "" && !criteria.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, criteria.Status)
	}
	if criteria.Priority != "" && !criteria.Priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, criteria.Priority)
	}

	issues, err := s.store.Issues().Search(ctx, repository.IssueFilter{
		Title:      criteria.Title,
		Status:     criteria.Status,
		Priority:   criteria.Priority,
		AssigneeID: criteria.AssigneeID,
		ReporterID: criteria.ReporterID,
		Keywords:   criteria.Keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	return newResolver(s.store).records(ctx, issues)
}

// StatusReport counts issues per status, in the declared status order. Statuses
// no issue currently has are left out.
func (s *IssueService) StatusReport(ctx context.Context) ([]model.StatusCount, error) {
	rows, err := s.store.Issues().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count issues by status: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].Status.Rank(), rows[j].Status.Rank()
		if ri < 0 || rj < 0 {
			return ri >= 0 && rj < 0
		}
		return ri < rj
	})
	return rows, nil
}
