package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueStatus represents the state of an issue.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "Open"
	IssueStatusInProgress IssueStatus = "InProgress"
	IssueStatusResolved   IssueStatus = "Resolved"
	IssueStatusClosed     IssueStatus = "Closed"
)

// IssueStatuses lists every status in declared order.
var IssueStatuses = []IssueStatus{
	IssueStatusOpen,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusClosed,
}

// Valid reports whether s is one of the declared statuses.
func (s IssueStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in declared order, or -1 if s is unknown.
func (s IssueStatus) Rank() int {
	for i, v := range IssueStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseIssueStatus matches a status name case-insensitively.
func ParseIssueStatus(v string) (IssueStatus, bool) {
	for _, s := range IssueStatuses {
		if strings.EqualFold(string(s), strings.TrimSpace(v)) {
			return s, true
		}
	}
	return "", false
}

// IssuePriority represents the urgency of an issue.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "Low"
	IssuePriorityMedium IssuePriority = "Medium"
	IssuePriorityHigh   IssuePriority = "High"
	IssuePriorityUrgent IssuePriority = "Urgent"
)

// IssuePriorities lists every priority in declared order.
var IssuePriorities = []IssuePriority{
	IssuePriorityLow,
	IssuePriorityMedium,
	IssuePriorityHigh,
	IssuePriorityUrgent,
}

func (p IssuePriority) Valid() bool {
	return p.Rank() >= 0
}

func (p IssuePriority) Rank() int {
	for i, v := range IssuePriorities {
		if v == p {
			return i
		}
	}
	return -1
}

// ParseIssuePriority matches a priority name case-insensitively.
func ParseIssuePriority(v string) (IssuePriority, bool) {
	for _, p := range IssuePriorities {
		if strings.EqualFold(string(p), strings.TrimSpace(v)) {
			return p, true
		}
	}
	return "", false
}

// Issue is a trackable unit of work, optionally linked to a project, a project
// task or an independent task. The reporter and the links are fixed at creation.
type Issue struct {
	ID                uint          `gorm:"primaryKey"`
	Title             string        `gorm:"not null"`
	Description       string
	Status            IssueStatus   `gorm:"type:varchar(20);not null;index"`
	Priority          IssuePriority `gorm:"type:varchar(20);not null"`
	ReporterID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	AssigneeID        *uuid.UUID    `gorm:"type:uuid;index"`
	ProjectID         *uint         `gorm:"index"`
	ProjectTaskID     *uint         `gorm:"index"`
	IndependentTaskID *uint         `gorm:"index"`
	CreatedAt         time.Time     `gorm:"index"`
	UpdatedAt         time.Time

	Reporter        *User            `gorm:"foreignKey:ReporterID"`
	Assignee        *User            `gorm:"foreignKey:AssigneeID"`
	Project         *Project         `gorm:"foreignKey:ProjectID"`
	ProjectTask     *ProjectTask     `gorm:"foreignKey:ProjectTaskID"`
	IndependentTask *IndependentTask `gorm:"foreignKey:IndependentTaskID"`
}
