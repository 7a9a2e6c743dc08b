package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "household-tasks.com/household-tasks/internal/errors"
	model "household-tasks.com/household-tasks/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

// ListDueReminders selects tasks whose reminder became due inside the bounded
// window (windowStart, windowEnd]. Only unprocessed, uncompleted, assigned
// tasks qualify.
func (r *TaskRepository) ListDueReminders(ctx context.Context, windowStart, windowEnd time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("reminder_processed = ? AND completed = ?", false, false).
		Where("assigned_to IS NOT NULL AND reminder_time IS NOT NULL").
		Where("reminder_time > ? AND reminder_time <= ?", windowStart, windowEnd).
		Order("reminder_time asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkReminderProcessed flips the one-way reminder flag. The flag never
// transitions back to false.
func (r *TaskRepository) MarkReminderProcessed(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("reminder_processed", true).Error
}

// SweepStaleReminders force-marks every unprocessed reminder older than the
// cutoff so a resumed process never floods users with a backlog. Returns the
// number of swept tasks.
func (r *TaskRepository) SweepStaleReminders(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("reminder_processed = ? AND reminder_time IS NOT NULL AND reminder_time < ?", false, cutoff).
		Update("reminder_processed", true)
	return res.RowsAffected, res.Error
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes the task. Generated occurrences of a deleted recurring
// parent stay behind as standalone tasks with the parent reference cleared.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("parent_task_id = ?", id).
			Update("parent_task_id", nil).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotFound
		}
		return nil
	})
}
