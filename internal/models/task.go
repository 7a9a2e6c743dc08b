package model

import (
	"time"

	"household-tasks.com/household-tasks/internal/constants"
)

type Task struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	Title             string                      `gorm:"not null" json:"title"`
	Description       string                      `json:"description,omitempty"`
	AssignedTo        *string                     `gorm:"size:36;index" json:"assigned_to,omitempty"`
	Completed         bool                        `gorm:"not null;default:false" json:"completed"`
	Priority          constants.Priority          `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	DueDate           *time.Time                  `json:"due_date,omitempty"`
	ReminderTime      *time.Time                  `gorm:"index" json:"reminder_time,omitempty"`
	ReminderProcessed bool                        `gorm:"not null;default:false" json:"reminder_processed"`
	RecurrencePattern constants.RecurrencePattern `gorm:"type:varchar(10)" json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time                  `json:"recurrence_end_date,omitempty"`
	ParentTaskID      *string                     `gorm:"size:36;index" json:"parent_task_id,omitempty"`
	IsRecurring       bool                        `gorm:"not null;default:false" json:"is_recurring"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}
