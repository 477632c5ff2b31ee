package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/notifications"
	"groomcal/backend/internal/scheduling"
	"groomcal/backend/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto HTTP statuses. Anything unmapped is
// an internal error; the detail goes to the log, not the client.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	var (
		schedVErr *scheduling.ValidationError
		notifVErr *notifications.ValidationError
		stateErr  *scheduling.InvalidStateError
		transErr  *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &schedVErr),
		errors.As(err, &notifVErr),
		errors.Is(err, scheduling.ErrInvalidInterval),
		errors.Is(err, scheduling.ErrPastDate):
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, scheduling.ErrForbidden):
		log.Warn("forbidden", slog.Any("err", err))
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})

	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})

	case errors.Is(err, store.ErrConflict):
		log.Info("slot conflict", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{Error: "That slot is already taken. Pick a different time."})

	case errors.Is(err, scheduling.ErrDuplicateBookingForPet):
		log.Info("duplicate pet booking", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.As(err, &stateErr), errors.As(err, &transErr):
		log.Info("illegal state change", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, store.ErrStaleState):
		log.Info("stale state", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{Error: "The appointment changed while processing the request. Retry."})
	}

	log.Error("request failed", slog.Any("err", err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
