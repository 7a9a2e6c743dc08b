package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"household-tasks.com/household-tasks/internal/constants"
	dto "household-tasks.com/household-tasks/internal/data_models"
	apperrors "household-tasks.com/household-tasks/internal/errors"
	"household-tasks.com/household-tasks/internal/gateway"
	"household-tasks.com/household-tasks/internal/http/validators"
	model "household-tasks.com/household-tasks/internal/models"
	repository "household-tasks.com/household-tasks/internal/repositories"
	"household-tasks.com/household-tasks/internal/services"
)

type Handler struct {
	taskService *services.TaskService
	dispatch    *services.DispatchService
	userRepo    *repository.UserRepository
	notifRepo   *repository.NotificationRepository
}

func NewHandler(
	taskService *services.TaskService,
	dispatch *services.DispatchService,
	userRepo *repository.UserRepository,
	notifRepo *repository.NotificationRepository,
) *Handler {
	return &Handler{
		taskService: taskService,
		dispatch:    dispatch,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), services.TaskInput{
		Title:             req.Title,
		Description:       req.Description,
		AssignedTo:        req.AssignedTo,
		Priority:          req.Priority,
		DueDate:           req.DueDate,
		ReminderTime:      req.ReminderTime,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		RecurrenceEndDate: req.RecurrenceEndDate,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tasks")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), services.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		AssignedTo:   req.AssignedTo,
		Priority:     req.Priority,
		Completed:    req.Completed,
		DueDate:      req.DueDate,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		var appErr *apperrors.Exception
		if errors.As(err, &appErr) {
			return echo.NewHTTPError(appErr.StatusCode, appErr.Message)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.userRepo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateUserRequest(&req); err != nil {
		return err
	}

	user := model.User{
		Name:                   req.Name,
		Color:                  req.Color,
		PhoneNumber:            req.PhoneNumber,
		NotificationPreference: req.NotificationPreference,
	}
	if err := h.userRepo.Create(c.Request().Context(), &user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUserNotifications(c echo.Context) error {
	notifications, err := h.notifRepo.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	if err := h.notifRepo.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// NotificationLogs serves the delivery audit view: every ledger row with its
// latest status, attempts and error.
func (h *Handler) NotificationLogs(c echo.Context) error {
	notifications, err := h.notifRepo.ListWithStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list notification logs")
	}
	return c.JSON(http.StatusOK, notifications)
}

// TestNotification sends an ad-hoc reminder so a user can verify their
// notification settings. Unlike the scheduler path, delivery errors surface
// to the caller with their HTTP-equivalent status.
func (h *Handler) TestNotification(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepo.FindByID(ctx, c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	now := time.Now()
	task, err := h.taskService.CreateTask(ctx, services.TaskInput{
		Title:        "Test Notification",
		Description:  "This is a test notification to verify your notification settings.",
		AssignedTo:   &user.ID,
		Priority:     constants.PriorityMedium,
		DueDate:      &now,
		ReminderTime: &now,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create test task")
	}

	notification, err := h.notifRepo.Insert(ctx, task.ID, user.ID, fmt.Sprintf("Test notification for %s", user.Name))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create test notification")
	}

	result, err := h.dispatch.DispatchReminder(ctx, task, user, notification.ID)
	if err != nil {
		return c.JSON(statusForDispatchError(err), echo.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	message := fmt.Sprintf("Test notification sent successfully via %s", result.Channel)
	if result.Fallback {
		message = "Test notification sent successfully via SMS (WhatsApp unavailable)"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  message,
		"status":   result.Status,
		"channel":  result.Channel,
		"fallback": result.Fallback,
	})
}

// Webhook receives asynchronous delivery-status callbacks from the provider
// and reconciles them into the ledger.
func (h *Handler) Webhook(c echo.Context) error {
	var req dto.DeliveryCallbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid callback payload")
	}

	err := h.dispatch.Reconcile(
		c.Request().Context(),
		req.MessageSid,
		constants.DeliveryStatus(req.MessageStatus),
		req.ErrorCode,
		req.ErrorMessage,
	)
	if err != nil {
		log.Printf("webhook: reconcile %s: %v", req.MessageSid, err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

func statusForDispatchError(err error) int {
	var provErr *gateway.ProviderError
	if errors.As(err, &provErr) && provErr.Status >= 400 && provErr.Status < 600 {
		return provErr.Status
	}
	return apperrors.StatusCode(err)
}
