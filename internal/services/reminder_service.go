package services

import (
	"context"
	"log"
	"time"

	apperrors "household-tasks.com/household-tasks/internal/errors"
	model "household-tasks.com/household-tasks/internal/models"
	repository "household-tasks.com/household-tasks/internal/repositories"
)

// ReminderService owns the periodic reminder pass: discover tasks whose
// reminder became due inside the bounded window, dispatch each exactly once,
// and sweep stale leftovers so a restart never replays an old backlog.
type ReminderService struct {
	taskRepo  *repository.TaskRepository
	userRepo  *repository.UserRepository
	notifRepo *repository.NotificationRepository
	dispatch  *DispatchService
	timeZone  *time.Location
	window    time.Duration
	staleAge  time.Duration
}

func NewReminderService(
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	notifRepo *repository.NotificationRepository,
	dispatch *DispatchService,
	timeZone *time.Location,
	window time.Duration,
	staleAge time.Duration,
) *ReminderService {
	return &ReminderService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		dispatch:  dispatch,
		timeZone:  timeZone,
		window:    window,
		staleAge:  staleAge,
	}
}

// RunTick executes one scheduler pass. One task's failure never aborts the
// pass for its siblings, and the stale sweep always runs after the dispatch
// pass so a reminder that just became eligible cannot be swept in the same
// tick.
func (s *ReminderService) RunTick(ctx context.Context) {
	now := time.Now().In(s.timeZone)

	due, err := s.taskRepo.ListDueReminders(ctx, now.Add(-s.window), now)
	if err != nil {
		log.Printf("reminder: list due reminders: %v", err)
	} else {
		if len(due) > 0 {
			log.Printf("reminder: %d pending reminders to process", len(due))
		}
		for i := range due {
			s.processOne(ctx, &due[i])
		}
	}

	swept, err := s.taskRepo.SweepStaleReminders(ctx, now.Add(-s.staleAge))
	if err != nil {
		log.Printf("reminder: stale sweep: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("reminder: swept %d stale reminders without dispatch", swept)
	}
}

func (s *ReminderService) processOne(ctx context.Context, task *model.Task) {
	user, err := s.userRepo.FindByID(ctx, *task.AssignedTo)
	if err != nil {
		// Unresolvable assignee: skip now, the stale sweep retires the
		// flag once the reminder ages out.
		log.Printf("reminder: no user for task %s: %v", task.ID, err)
		return
	}

	notification, err := s.notifRepo.Insert(ctx, task.ID, user.ID, s.dispatch.FormatReminder(task, user))
	if err != nil {
		log.Printf("reminder: create ledger row for task %s: %v", task.ID, err)
		return
	}

	result, err := s.dispatch.DispatchReminder(ctx, task, user, notification.ID)
	switch {
	case err == nil:
		log.Printf("reminder: task %s dispatched via %s (fallback=%t, sid=%s)",
			task.ID, result.Channel, result.Fallback, result.ProviderID)
	case err == apperrors.ErrNoPhoneNumber:
		log.Printf("reminder: task %s skipped delivery: %v", task.ID, err)
	default:
		// Failure is durable in the ledger; the reminder still counts as
		// processed so it is never re-sent.
		log.Printf("reminder: task %s dispatch failed: %v", task.ID, err)
	}

	if err := s.taskRepo.MarkReminderProcessed(ctx, task.ID); err != nil {
		log.Printf("reminder: mark task %s processed: %v", task.ID, err)
	}
}
