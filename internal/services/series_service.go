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

// SeriesService materializes concrete future occurrences for a recurring
// task definition.
type SeriesService struct {
	taskRepo      *repository.TaskRepository
	horizonMonths int
}

func NewSeriesService(taskRepo *repository.TaskRepository, horizonMonths int) *SeriesService {
	return &SeriesService{
		taskRepo:      taskRepo,
		horizonMonths: horizonMonths,
	}
}

// ExpandRecurringSeries generates one occurrence per recurrence step after
// the parent's due date, up to the series end (recurrence end date, or the
// default horizon past the parent due date when unset). Each occurrence
// carries its own due date and a reminder shifted by the parent's
// reminder-to-due offset.
func (s *SeriesService) ExpandRecurringSeries(ctx context.Context, parent *model.Task) ([]model.Task, error) {
	if !parent.IsRecurring || parent.DueDate == nil || parent.RecurrencePattern == "" {
		return nil, nil
	}
	if !parent.RecurrencePattern.Valid() {
		// Should be unreachable given upstream validation.
		return nil, fmt.Errorf("unrecognized recurrence pattern %q", parent.RecurrencePattern)
	}

	end := parent.DueDate.AddDate(0, s.horizonMonths, 0)
	if parent.RecurrenceEndDate != nil {
		end = *parent.RecurrenceEndDate
	}

	var reminderOffset time.Duration
	hasReminder := parent.ReminderTime != nil
	if hasReminder {
		reminderOffset = parent.DueDate.Sub(*parent.ReminderTime)
	}

	var occurrences []model.Task
	for current := *parent.DueDate; ; {
		next := advance(current, parent.RecurrencePattern)
		if next.After(end) {
			break
		}

		occurrence := model.Task{
			Title:             parent.Title,
			Description:       parent.Description,
			AssignedTo:        parent.AssignedTo,
			Priority:          parent.Priority,
			DueDate:           timePtr(next),
			IsRecurring:       false,
			ParentTaskID:      &parent.ID,
			RecurrencePattern: "",
		}
		if hasReminder {
			occurrence.ReminderTime = timePtr(next.Add(-reminderOffset))
		}

		if err := s.taskRepo.Create(ctx, &occurrence); err != nil {
			return occurrences, fmt.Errorf("create occurrence due %s: %w", next.Format(time.RFC3339), err)
		}
		occurrences = append(occurrences, occurrence)
		current = next
	}

	log.Printf("series: expanded task %s into %d occurrences", parent.ID, len(occurrences))
	return occurrences, nil
}

func advance(t time.Time, pattern constants.RecurrencePattern) time.Time {
	switch pattern {
	case constants.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case constants.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case constants.RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}

func timePtr(t time.Time) *time.Time {
	return &t
}
