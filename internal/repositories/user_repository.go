package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-tasks.com/household-tasks/internal/constants"
	apperrors "household-tasks.com/household-tasks/internal/errors"
	model "household-tasks.com/household-tasks/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.PhoneNumber = NormalizePhone(user.PhoneNumber)
	if user.NotificationPreference == "" {
		user.NotificationPreference = constants.ChannelSMS
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("name asc").Find(&users).Error
	return users, err
}

// UpdatePreference persists a channel-preference change. The dispatcher uses
// it for the permanent WhatsApp-to-SMS downgrade; last write wins against
// concurrent user-facing edits.
func (r *UserRepository) UpdatePreference(ctx context.Context, userID string, pref constants.Channel) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("notification_preference", pref).Error
}

// NormalizePhone stores phone numbers with a leading plus. Empty stays empty.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
