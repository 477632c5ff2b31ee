package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"groomcal/backend/internal/domain"
)

type notificationResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Kind          string    `json:"kind"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

func toNotificationResponse(n domain.NotificationEvent) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		AppointmentID: n.AppointmentID,
		Kind:          string(n.Kind),
		Message:       n.Message,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt,
	}
}

func (s *Server) ListNotifications(c echo.Context) error {
	log := s.log.With(slog.String("route", "ListNotifications"))

	unreadOnly := c.QueryParam("unread") == "true"
	events, err := s.notif.List(c.Request().Context(), c.Param("id"), unreadOnly)
	if err != nil {
		return writeError(c, log, err)
	}

	out := make([]notificationResponse, len(events))
	for i, ev := range events {
		out[i] = toNotificationResponse(ev)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

func (s *Server) UnreadCount(c echo.Context) error {
	log := s.log.With(slog.String("route", "UnreadCount"))

	count, err := s.notif.UnreadCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (s *Server) MarkNotificationRead(c echo.Context) error {
	log := s.log.With(slog.String("route", "MarkNotificationRead"))

	id, err := uuid.Parse(c.Param("notificationID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "notification id must be a UUID"})
	}

	ev, err := s.notif.MarkRead(c.Request().Context(), c.Param("id"), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, toNotificationResponse(ev))
}

func (s *Server) MarkAllNotificationsRead(c echo.Context) error {
	log := s.log.With(slog.String("route", "MarkAllNotificationsRead"))

	count, err := s.notif.MarkAllRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("notifications marked read",
		slog.String("groomer_id", c.Param("id")),
		slog.Int64("count", count),
	)
	return c.JSON(http.StatusOK, echo.Map{"marked": count})
}
