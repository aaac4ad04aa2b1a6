package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_project_status,priority:1;index:idx_tasks_project_priority,priority:1"`
	Title       string    `gorm:"size:200;not null"`
	Description string
	Status      string `gorm:"size:10;not null;default:'todo';index:idx_tasks_project_status,priority:2"`
	Priority    string `gorm:"size:10;not null;default:'medium';index:idx_tasks_project_priority,priority:2"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// Task statuses
const (
	StatusTodo  = "todo"
	StatusDoing = "doing"
	StatusDone  = "done"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
