package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "household-tasks.com/household-tasks/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "priority must be low, medium or high")
	}
	if r.IsRecurring {
		if r.DueDate == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "recurring tasks require a due date")
		}
		if !r.RecurrencePattern.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "recurrence pattern must be daily, weekly or monthly")
		}
	}
	return nil
}

func ValidateCreateUserRequest(r *dto.CreateUserRequest) error {
	if r.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if r.Color == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "color is required")
	}
	if r.NotificationPreference != "" && !r.NotificationPreference.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "notification preference must be sms or whatsapp")
	}
	return nil
}
