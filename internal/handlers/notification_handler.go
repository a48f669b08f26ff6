package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications/user/:userId", h.GetUserNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// CreateNotification creates a notification (used by the matching pipeline
// and admin tooling; claim notifications come from the workflow itself)
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}

	var req models.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notification := &models.Notification{
		UserID:        req.UserID,
		Type:          req.Type,
		Title:         req.Title,
		Message:       req.Message,
		ItemID:        req.ItemID,
		RelatedUserID: req.RelatedUserID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.notificationRepository.CreateNotification(c.Request().Context(), notification); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create notification")
	}
	return c.JSON(http.StatusCreated, notification)
}

// GetUserNotifications returns the most recent notifications for a user
func (h *NotificationHandler) GetUserNotifications(c echo.Context) error {
	notifications, err := h.notificationRepository.GetByUserID(c.Request().Context(), c.Param("userId"), 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the unread notification count for the caller
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), actor.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), actor.UID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
