package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-tasks.com/household-tasks/internal/constants"
	apperrors "household-tasks.com/household-tasks/internal/errors"
	model "household-tasks.com/household-tasks/internal/models"
)

// NotificationRepository is the delivery ledger: one row per notification,
// one monotonically counted attempt history folded into its latest fields.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert creates the durable record before the first delivery attempt, so
// even a total failure leaves an auditable row.
func (r *NotificationRepository) Insert(ctx context.Context, taskID, userID, message string) (*model.Notification, error) {
	n := &model.Notification{
		ID:             uuid.NewString(),
		TaskID:         taskID,
		UserID:         userID,
		Message:        message,
		DeliveryStatus: constants.DeliveryPending,
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// RecordAttempt folds one attempt outcome into the ledger row: the attempt
// counter increments by exactly 1, latest status/error win, and the provider
// id is kept once known (an empty providerID never clears a stored one).
func (r *NotificationRepository) RecordAttempt(ctx context.Context, id string, status constants.DeliveryStatus, providerID, deliveryErr string) error {
	updates := map[string]interface{}{
		"delivery_status":   status,
		"delivery_error":    deliveryErr,
		"delivery_attempts": gorm.Expr("delivery_attempts + 1"),
		"last_attempt_at":   time.Now().UTC(),
	}
	if providerID != "" {
		updates["message_sid"] = providerID
	}

	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// FindByProviderID resolves the ledger row for an asynchronous status
// callback. The provider message id is the only correlation key.
func (r *NotificationRepository) FindByProviderID(ctx context.Context, providerID string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).First(&n, "message_sid = ?", providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListWithStatus feeds the delivery audit view.
func (r *NotificationRepository) ListWithStatus(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
