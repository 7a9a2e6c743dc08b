package model

import (
	"time"

	"household-tasks.com/household-tasks/internal/constants"
)

// Notification is the durable record of one reminder delivery and every
// attempt made against it, including asynchronous provider callbacks.
type Notification struct {
	ID               string                   `gorm:"primaryKey;size:36" json:"id"`
	TaskID           string                   `gorm:"size:36;not null;index" json:"task_id"`
	UserID           string                   `gorm:"size:36;not null;index" json:"user_id"`
	Message          string                   `gorm:"not null" json:"message"`
	Read             bool                     `gorm:"not null;default:false" json:"read"`
	DeliveryStatus   constants.DeliveryStatus `gorm:"type:varchar(20);not null;default:pending" json:"delivery_status"`
	MessageSID       string                   `gorm:"column:message_sid;index" json:"message_sid,omitempty"`
	DeliveryError    string                   `json:"delivery_error,omitempty"`
	DeliveryAttempts int                      `gorm:"not null;default:0" json:"delivery_attempts"`
	LastAttemptAt    *time.Time               `json:"last_attempt_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}
