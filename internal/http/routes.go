package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "household-tasks.com/household-tasks/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	api := e.Group("/api")

	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/:id", h.GetTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)

	api.GET("/notifications/user/:userId", h.ListUserNotifications)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)
	api.GET("/notifications/logs", h.NotificationLogs)
	api.POST("/notifications/test/:userId", h.TestNotification)
	api.POST("/notifications/webhook", h.Webhook)
}
