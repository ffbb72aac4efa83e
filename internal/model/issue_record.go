package model

import (
	"time"

	"github.com/google/uuid"
)

// IssueRecord is the read-facing shape of an issue with the names of related
// entities resolved.
type IssueRecord struct {
	ID                   uint          `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Status               IssueStatus   `json:"status"`
	Priority             IssuePriority `json:"priority"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	ReporterID           uuid.UUID     `json:"reporter_id"`
	ReporterName         string        `json:"reporter_name"`
	AssigneeID           *uuid.UUID    `json:"assignee_id,omitempty"`
	AssigneeName         string        `json:"assignee_name,omitempty"`
	ProjectID            *uint         `json:"project_id,omitempty"`
	ProjectName          string        `json:"project_name,omitempty"`
	ProjectTaskID        *uint         `json:"project_task_id,omitempty"`
	ProjectTaskTitle     string        `json:"project_task_title,omitempty"`
	IndependentTaskID    *uint         `json:"independent_task_id,omitempty"`
	IndependentTaskTitle string        `json:"independent_task_title,omitempty"`
}

// IssueDeletion confirms a permanent delete and carries the issue's last state.
type IssueDeletion struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Status    IssueStatus `json:"status"`
	Message   string      `json:"message"`
	DeletedAt time.Time   `json:"deleted_at"`
}

// StatusCount is one row of the status report.
type StatusCount struct {
	Status IssueStatus `json:"status"`
	Count  int64       `json:"count"`
}
