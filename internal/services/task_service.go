package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"household-tasks.com/household-tasks/internal/constants"
	model "household-tasks.com/household-tasks/internal/models"
	repository "household-tasks.com/household-tasks/internal/repositories"
)

// TaskInput carries the fields a caller may set when creating a task.
type TaskInput struct {
	Title             string
	Description       string
	AssignedTo        *string
	Priority          constants.Priority
	DueDate           *time.Time
	ReminderTime      *time.Time
	IsRecurring       bool
	RecurrencePattern constants.RecurrencePattern
	RecurrenceEndDate *time.Time
}

type TaskService struct {
	taskRepo *repository.TaskRepository
	series   *SeriesService
}

func NewTaskService(taskRepo *repository.TaskRepository, series *SeriesService) *TaskService {
	return &TaskService{taskRepo: taskRepo, series: series}
}

// CreateTask persists a task and, for a recurring definition, expands its
// series of concrete occurrences.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Priority == "" {
		input.Priority = constants.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", input.Priority)
	}
	if input.IsRecurring {
		if input.DueDate == nil {
			return nil, fmt.Errorf("recurring tasks require a due date")
		}
		if !input.RecurrencePattern.Valid() {
			return nil, fmt.Errorf("invalid recurrence pattern %q", input.RecurrencePattern)
		}
	}

	task := model.Task{
		Title:             input.Title,
		Description:       input.Description,
		AssignedTo:        input.AssignedTo,
		Priority:          input.Priority,
		DueDate:           input.DueDate,
		ReminderTime:      input.ReminderTime,
		IsRecurring:       input.IsRecurring,
		RecurrenceEndDate: input.RecurrenceEndDate,
	}
	if input.IsRecurring {
		task.RecurrencePattern = input.RecurrencePattern
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	if task.IsRecurring {
		if _, err := s.series.ExpandRecurringSeries(ctx, &task); err != nil {
			// The parent is already durable; expansion failure is logged
			// rather than rolling the creation back.
			log.Printf("task: expand series for %s: %v", task.ID, err)
		}
	}

	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.List(ctx)
}

// TaskUpdate lists the mutable fields of an existing task. Nil leaves a
// field untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	AssignedTo   *string
	Priority     *constants.Priority
	Completed    *bool
	DueDate      *time.Time
	ReminderTime *time.Time
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.AssignedTo != nil {
		task.AssignedTo = update.AssignedTo
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority %q", *update.Priority)
		}
		task.Priority = *update.Priority
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.ReminderTime != nil {
		task.ReminderTime = update.ReminderTime
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task. Occurrences of a deleted recurring parent
// remain standalone and independently completable.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.taskRepo.Delete(ctx, id)
}
