package schedule

import (
	"errors"
	"net/http"

	"classfit/internal/api"
	"classfit/internal/auth"
	"classfit/internal/logger"
	"classfit/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// CreateSchedule godoc
// @Summary      Create a class schedule
// @Description  Admin-only: schedule a class for a trainer. At most 5
// @Description  schedules may exist per calendar date.
// @Tags         admin,schedules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body schedule.CreateScheduleRequest true "Schedule payload"
// @Success      201 {object} schedule.ScheduleDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/schedules [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	details, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTrainerNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found or user is not a trainer"})
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date"})
		case errors.Is(err, ErrDailyLimitReached):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Maximum limit of 5 schedules per day has been reached"})
		default:
			logger.WithError(err).Error("schedule creation failed")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusCreated, details)
}

// ListSchedules godoc
// @Summary      List schedules
// @Description  Trainers see only the schedules they teach; admins and
// @Description  trainees see every schedule.
// @Tags         schedules
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} schedule.ScheduleDetails
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedules [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	callerID, callerRole, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	details, err := h.service.List(c.Request.Context(), callerID, callerRole)
	if err != nil {
		logger.WithError(err).Error("listing schedules failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListSchedulesByDate godoc
// @Summary      List schedules for a date
// @Tags         schedules
// @Produce      json
// @Security     BearerAuth
// @Param        date path string true "Date (YYYY-MM-DD)"
// @Success      200 {array} schedule.ScheduleDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedules/date/{date} [get]
func (h *Handler) ListSchedulesByDate(c *gin.Context) {
	callerID, callerRole, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	details, err := h.service.ListByDate(c.Request.Context(), callerID, callerRole, c.Param("date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date"})
			return
		}
		logger.WithError(err).Error("listing schedules by date failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// BookSchedule godoc
// @Summary      Book a class
// @Description  Adds the caller to the schedule roster, subject to capacity
// @Description  and same-day start-time conflict rules.
// @Tags         schedules
// @Produce      json
// @Security     BearerAuth
// @Param        scheduleID path string true "Schedule ID"
// @Success      201 {object} schedule.ScheduleDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedules/{scheduleID}/book [post]
func (h *Handler) BookSchedule(c *gin.Context) {
	callerID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	details, err := h.service.Book(c.Request.Context(), c.Param("scheduleID"), callerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Schedule not found"})
		case errors.Is(err, ErrAlreadyBooked):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "You have already booked this class"})
		case errors.Is(err, ErrScheduleFull):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Class schedule is full. Maximum 10 trainees allowed per schedule."})
		case errors.Is(err, ErrTimeConflict):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "You already have a booking at this time slot"})
		default:
			logger.WithError(err).Error("booking failed")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusCreated, details)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Tags         schedules
// @Produce      json
// @Security     BearerAuth
// @Param        scheduleID path string true "Schedule ID"
// @Success      200 {object} schedule.ScheduleDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedules/{scheduleID}/book [delete]
func (h *Handler) CancelBooking(c *gin.Context) {
	callerID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	details, err := h.service.Cancel(c.Request.Context(), c.Param("scheduleID"), callerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Schedule not found"})
		case errors.Is(err, ErrNotBooked):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "You have not booked this class"})
		default:
			logger.WithError(err).Error("cancellation failed")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, details)
}

func caller(c *gin.Context) (string, user.Role, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		return "", "", false
	}
	role, ok := auth.GetUserRole(c)
	if !ok {
		return "", "", false
	}
	return id, user.Role(role), true
}
