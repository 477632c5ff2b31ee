// Package http is the REST boundary over the scheduling core and the
// notification inbox. Handlers translate between JSON and domain types;
// all policy lives below in the services.
package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"groomcal/backend/internal/availability"
	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/scheduling"
)

type schedulerService interface {
	Create(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error)
	Reschedule(ctx context.Context, actor scheduling.Actor, id uuid.UUID, newDate time.Time, newStart, newEnd domain.TimeOfDay) (domain.Appointment, error)
	Confirm(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	Cancel(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	Finish(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	MarkNoShow(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListGroomerDay(ctx context.Context, groomerID string, date time.Time) ([]domain.Appointment, error)
	ListUpcoming(ctx context.Context, groomerID string, asOf time.Time, horizon time.Duration) ([]domain.Appointment, error)
	GetAvailability(ctx context.Context, groomerID string, date time.Time) (availability.Day, error)
	FreeSlots(ctx context.Context, groomerID string, date time.Time) ([]domain.Interval, error)
	HasConflict(ctx context.Context, groomerID string, date time.Time, start, end domain.TimeOfDay, excludeID uuid.UUID) (bool, error)
	ExpireStaleAppointments(ctx context.Context, groomerID string, asOf time.Time) (int64, error)
	GenerateUpcomingReminders(ctx context.Context, groomerID string, asOf time.Time, horizon time.Duration) (int, error)
	AddWindow(ctx context.Context, w domain.WorkingHoursWindow) (domain.WorkingHoursWindow, error)
	ListWindows(ctx context.Context, groomerID string, weekday int) ([]domain.WorkingHoursWindow, error)
}

type notificationService interface {
	List(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error)
	UnreadCount(ctx context.Context, groomerID string) (int64, error)
	MarkRead(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error)
	MarkAllRead(ctx context.Context, groomerID string) (int64, error)
}

type Server struct {
	sched    schedulerService
	notif    notificationService
	validate *validator.Validate
	log      *slog.Logger
}

func NewServer(sched schedulerService, notif notificationService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sched:    sched,
		notif:    notif,
		validate: validator.New(),
		log:      log.With(slog.String("component", "http")),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/api/appointments", s.CreateAppointment)
	e.GET("/api/appointments/:id", s.GetAppointment)
	e.POST("/api/appointments/:id/reschedule", s.RescheduleAppointment)
	e.POST("/api/appointments/:id/confirm", s.ConfirmAppointment)
	e.POST("/api/appointments/:id/cancel", s.CancelAppointment)
	e.POST("/api/appointments/:id/finish", s.FinishAppointment)
	e.POST("/api/appointments/:id/no-show", s.MarkAppointmentNoShow)

	e.GET("/api/groomers/:id/appointments", s.ListGroomerDay)
	e.GET("/api/groomers/:id/upcoming", s.ListUpcoming)
	e.GET("/api/groomers/:id/availability", s.GetAvailability)
	e.GET("/api/groomers/:id/slots", s.GetFreeSlots)
	e.GET("/api/groomers/:id/conflict", s.CheckConflict)
	e.POST("/api/groomers/:id/expire", s.ExpireStale)
	e.POST("/api/groomers/:id/reminders", s.GenerateReminders)
	e.GET("/api/groomers/:id/windows", s.ListWindows)
	e.POST("/api/groomers/:id/windows", s.AddWindow)

	e.GET("/api/groomers/:id/notifications", s.ListNotifications)
	e.GET("/api/groomers/:id/notifications/unread-count", s.UnreadCount)
	e.POST("/api/groomers/:id/notifications/:notificationID/read", s.MarkNotificationRead)
	e.POST("/api/groomers/:id/notifications/read-all", s.MarkAllNotificationsRead)
}
