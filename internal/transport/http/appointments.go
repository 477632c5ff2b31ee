package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/scheduling"
)

type createAppointmentRequest struct {
	PetID     string `json:"pet_id" validate:"required"`
	GroomerID string `json:"groomer_id" validate:"required"`
	ClientID  string `json:"client_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Notes     string `json:"notes" validate:"max=500"`
}

type rescheduleRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type appointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	PetID     string    `json:"pet_id"`
	GroomerID string    `json:"groomer_id"`
	ClientID  string    `json:"client_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	State     string    `json:"state"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		PetID:     a.PetID,
		GroomerID: a.GroomerID,
		ClientID:  a.ClientID,
		Date:      a.Date.Format("2006-01-02"),
		StartTime: a.StartTime.String(),
		EndTime:   a.EndTime.String(),
		State:     string(a.State),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAppointmentResponses(appts []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, len(appts))
	for i, a := range appts {
		out[i] = toAppointmentResponse(a)
	}
	return out
}

func (s *Server) CreateAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "CreateAppointment"))

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "malformed_body"))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	slot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	appt, err := s.sched.Create(c.Request().Context(), scheduling.CreateInput{
		PetID:     req.PetID,
		GroomerID: req.GroomerID,
		ClientID:  req.ClientID,
		Date:      slot.date,
		StartTime: slot.start,
		EndTime:   slot.end,
		Notes:     req.Notes,
	})
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("groomer_id", appt.GroomerID),
		slog.String("date", appt.Date.Format("2006-01-02")),
	)
	return c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (s *Server) GetAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "GetAppointment"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "appointment id must be a UUID"})
	}

	appt, err := s.sched.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) RescheduleAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "RescheduleAppointment"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "appointment id must be a UUID"})
	}
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "actor headers are required"})
	}

	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "malformed_body"))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	slot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	appt, err := s.sched.Reschedule(c.Request().Context(), actor, id, slot.date, slot.start, slot.end)
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("appointment rescheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("date", appt.Date.Format("2006-01-02")),
	)
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) ConfirmAppointment(c echo.Context) error {
	return s.transition(c, "ConfirmAppointment", s.sched.Confirm)
}

func (s *Server) CancelAppointment(c echo.Context) error {
	return s.transition(c, "CancelAppointment", s.sched.Cancel)
}

func (s *Server) FinishAppointment(c echo.Context) error {
	return s.transition(c, "FinishAppointment", s.sched.Finish)
}

func (s *Server) MarkAppointmentNoShow(c echo.Context) error {
	return s.transition(c, "MarkAppointmentNoShow", s.sched.MarkNoShow)
}

func (s *Server) transition(c echo.Context, route string, apply func(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)) error {
	log := s.log.With(slog.String("route", route))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "appointment id must be a UUID"})
	}
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "actor headers are required"})
	}

	appt, err := apply(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("appointment state changed",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("state", string(appt.State)),
	)
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

type slot struct {
	date  time.Time
	start domain.TimeOfDay
	end   domain.TimeOfDay
}

func parseSlot(date, start, end string) (slot, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return slot{}, err
	}
	st, err := domain.ParseTimeOfDay(start)
	if err != nil {
		return slot{}, err
	}
	en, err := domain.ParseTimeOfDay(end)
	if err != nil {
		return slot{}, err
	}
	return slot{date: d.UTC(), start: st, end: en}, nil
}

// actorFrom resolves the caller from the gateway-set identity headers.
// There is no session handling here; an upstream proxy authenticates and
// stamps these.
func actorFrom(c echo.Context) (scheduling.Actor, bool) {
	h := c.Request().Header
	id := strings.TrimSpace(h.Get("X-Actor-Id"))
	role := scheduling.Role(strings.ToUpper(strings.TrimSpace(h.Get("X-Actor-Role"))))
	if id == "" {
		return scheduling.Actor{}, false
	}
	switch role {
	case scheduling.RoleClient, scheduling.RoleGroomer, scheduling.RoleAdmin:
	default:
		return scheduling.Actor{}, false
	}
	return scheduling.Actor{
		ID:    id,
		Role:  role,
		Email: strings.TrimSpace(h.Get("X-Actor-Email")),
	}, true
}
