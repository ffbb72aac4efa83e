package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner *User `gorm:"foreignKey:OwnerID"`
}

// ProjectTask is a unit of work that belongs to a project.
type ProjectTask struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project *Project `gorm:"foreignKey:ProjectID"`
}

// IndependentTask is a standalone task not attached to any project.
type IndependentTask struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator *User `gorm:"foreignKey:CreatedBy"`
}
