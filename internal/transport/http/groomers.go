package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"groomcal/backend/internal/availability"
	"groomcal/backend/internal/domain"
)

type intervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityResponse struct {
	Date     string             `json:"date"`
	Weekday  int                `json:"weekday"`
	Workable bool               `json:"workable"`
	Windows  []intervalResponse `json:"windows"`
	Busy     []intervalResponse `json:"busy"`
	Free     []intervalResponse `json:"free"`
}

type windowRequest struct {
	Weekday   *int   `json:"weekday" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type windowResponse struct {
	ID        uuid.UUID `json:"id"`
	GroomerID string    `json:"groomer_id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Active    bool      `json:"active"`
}

func toIntervalResponses(intervals []domain.Interval) []intervalResponse {
	out := make([]intervalResponse, len(intervals))
	for i, iv := range intervals {
		out[i] = intervalResponse{Start: iv.Start.String(), End: iv.End.String()}
	}
	return out
}

func toWindowResponse(w domain.WorkingHoursWindow) windowResponse {
	return windowResponse{
		ID:        w.ID,
		GroomerID: w.GroomerID,
		Weekday:   w.Weekday,
		StartTime: w.StartTime.String(),
		EndTime:   w.EndTime.String(),
		Active:    w.Active,
	}
}

func dateParam(c echo.Context) (time.Time, bool) {
	raw := c.QueryParam("date")
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return d.UTC(), true
}

func (s *Server) ListGroomerDay(c echo.Context) error {
	log := s.log.With(slog.String("route", "ListGroomerDay"))

	date, ok := dateParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "date query parameter is required as YYYY-MM-DD"})
	}

	appts, err := s.sched.ListGroomerDay(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": toAppointmentResponses(appts)})
}

func (s *Server) ListUpcoming(c echo.Context) error {
	log := s.log.With(slog.String("route", "ListUpcoming"))

	horizon := 24 * time.Hour
	if raw := c.QueryParam("horizon"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "horizon must be a duration like 24h"})
		}
		horizon = parsed
	}

	appts, err := s.sched.ListUpcoming(c.Request().Context(), c.Param("id"), time.Now().UTC(), horizon)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": toAppointmentResponses(appts)})
}

func (s *Server) GetAvailability(c echo.Context) error {
	log := s.log.With(slog.String("route", "GetAvailability"))

	date, ok := dateParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "date query parameter is required as YYYY-MM-DD"})
	}

	day, err := s.sched.GetAvailability(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, availabilityResponse{
		Date:     day.Date.Format("2006-01-02"),
		Weekday:  day.Weekday,
		Workable: day.Workable,
		Windows:  toIntervalResponses(day.Windows),
		Busy:     toIntervalResponses(day.Busy),
		Free:     toIntervalResponses(availability.Subtract(day.Windows, day.Busy)),
	})
}

// GetFreeSlots returns the free intervals of the day. With a duration
// query parameter it additionally enumerates the bookable start times,
// stepping by step (default: the duration itself).
func (s *Server) GetFreeSlots(c echo.Context) error {
	log := s.log.With(slog.String("route", "GetFreeSlots"))

	date, ok := dateParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "date query parameter is required as YYYY-MM-DD"})
	}

	free, err := s.sched.FreeSlots(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, log, err)
	}

	resp := echo.Map{"free": toIntervalResponses(free)}
	if raw := c.QueryParam("duration"); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "duration must be a duration like 1h"})
		}
		step := duration
		if rawStep := c.QueryParam("step"); rawStep != "" {
			step, err = time.ParseDuration(rawStep)
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "step must be a duration like 30m"})
			}
		}
		starts := availability.SlotStarts(free, duration, step)
		out := make([]string, len(starts))
		for i, t := range starts {
			out[i] = t.String()
		}
		resp["starts"] = out
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) CheckConflict(c echo.Context) error {
	log := s.log.With(slog.String("route", "CheckConflict"))

	date, ok := dateParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "date query parameter is required as YYYY-MM-DD"})
	}
	start, err := domain.ParseTimeOfDay(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "start must be HH:MM"})
	}
	end, err := domain.ParseTimeOfDay(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "end must be HH:MM"})
	}
	exclude := uuid.Nil
	if raw := c.QueryParam("exclude"); raw != "" {
		exclude, err = uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "exclude must be a UUID"})
		}
	}

	conflict, err := s.sched.HasConflict(c.Request().Context(), c.Param("id"), date, start, end, exclude)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"conflict": conflict})
}

func (s *Server) ExpireStale(c echo.Context) error {
	log := s.log.With(slog.String("route", "ExpireStale"))

	count, err := s.sched.ExpireStaleAppointments(c.Request().Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("stale appointments expired",
		slog.String("groomer_id", c.Param("id")),
		slog.Int64("count", count),
	)
	return c.JSON(http.StatusOK, echo.Map{"expired": count})
}

func (s *Server) GenerateReminders(c echo.Context) error {
	log := s.log.With(slog.String("route", "GenerateReminders"))

	horizon := 24 * time.Hour
	if raw := c.QueryParam("horizon"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "horizon must be a duration like 24h"})
		}
		horizon = parsed
	}

	count, err := s.sched.GenerateUpcomingReminders(c.Request().Context(), c.Param("id"), time.Now().UTC(), horizon)
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("reminders generated",
		slog.String("groomer_id", c.Param("id")),
		slog.Int("count", count),
	)
	return c.JSON(http.StatusOK, echo.Map{"created": count})
}

func (s *Server) ListWindows(c echo.Context) error {
	log := s.log.With(slog.String("route", "ListWindows"))

	weekday, err := strconv.Atoi(c.QueryParam("weekday"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "weekday query parameter is required as 0 (Monday) to 6 (Sunday)"})
	}

	windows, err := s.sched.ListWindows(c.Request().Context(), c.Param("id"), weekday)
	if err != nil {
		return writeError(c, log, err)
	}

	out := make([]windowResponse, len(windows))
	for i, w := range windows {
		out[i] = toWindowResponse(w)
	}
	return c.JSON(http.StatusOK, echo.Map{"windows": out})
}

func (s *Server) AddWindow(c echo.Context) error {
	log := s.log.With(slog.String("route", "AddWindow"))

	var req windowRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "malformed_body"))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "start_time must be HH:MM"})
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "end_time must be HH:MM"})
	}

	w, err := s.sched.AddWindow(c.Request().Context(), domain.WorkingHoursWindow{
		GroomerID: c.Param("id"),
		Weekday:   *req.Weekday,
		StartTime: start,
		EndTime:   end,
		Active:    true,
	})
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("window added",
		slog.String("groomer_id", w.GroomerID),
		slog.Int("weekday", w.Weekday),
	)
	return c.JSON(http.StatusCreated, toWindowResponse(w))
}
