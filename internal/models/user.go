package model

import (
	"time"

	"household-tasks.com/household-tasks/internal/constants"
)

type User struct {
	ID                     string            `gorm:"primaryKey;size:36" json:"id"`
	Name                   string            `gorm:"not null" json:"name"`
	Color                  string            `gorm:"not null" json:"color"`
	PhoneNumber            string            `json:"phone_number,omitempty"`
	NotificationPreference constants.Channel `gorm:"type:varchar(10);not null;default:sms" json:"notification_preference"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}
