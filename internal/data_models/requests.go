package dto

import (
	"time"

	"household-tasks.com/household-tasks/internal/constants"
)

type CreateTaskRequest struct {
	Title             string                      `json:"title"`
	Description       string                      `json:"description"`
	AssignedTo        *string                     `json:"assigned_to"`
	Priority          constants.Priority          `json:"priority"`
	DueDate           *time.Time                  `json:"due_date"`
	ReminderTime      *time.Time                  `json:"reminder_time"`
	IsRecurring       bool                        `json:"is_recurring"`
	RecurrencePattern constants.RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceEndDate *time.Time                  `json:"recurrence_end_date"`
}

type UpdateTaskRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	AssignedTo   *string             `json:"assigned_to"`
	Priority     *constants.Priority `json:"priority"`
	Completed    *bool               `json:"completed"`
	DueDate      *time.Time          `json:"due_date"`
	ReminderTime *time.Time          `json:"reminder_time"`
}

type CreateUserRequest struct {
	Name                   string            `json:"name"`
	Color                  string            `json:"color"`
	PhoneNumber            string            `json:"phone_number"`
	NotificationPreference constants.Channel `json:"notification_preference"`
}

// DeliveryCallbackRequest mirrors the provider's status webhook form fields.
type DeliveryCallbackRequest struct {
	MessageSid    string `form:"MessageSid"`
	MessageStatus string `form:"MessageStatus"`
	ErrorCode     string `form:"ErrorCode"`
	ErrorMessage  string `form:"ErrorMessage"`
}
