package class

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
)

type Handler struct {
	service Service
}

const defaultStatsWindow = 30 * 24 * time.Hour

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateClass godoc
// @Summary      Create class
// @Description  Schedules a class for a trainer. Overlapping classes of the same trainer are rejected.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClassRequest  true  "Class data"
// @Success      201      {object}  Class
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreateClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	class, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// ListClasses godoc
// @Summary      List classes
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        trainer_id  query     string  false  "Filter by trainer"
// @Param        status      query     string  false  "SCHEDULED, COMPLETED or CANCELLED"
// @Param        from        query     string  false  "Start time lower bound (RFC3339)"
// @Param        to          query     string  false  "Start time upper bound (RFC3339)"
// @Success      200         {array}   ClassWithAvailability
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	trainerID, ok := api.OptionalUUIDQuery(c, "trainer_id")
	if !ok {
		return
	}
	filter := ListFilter{TrainerID: trainerID}

	if raw := c.Query("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	if filter.From, ok = api.OptionalTimeQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = api.OptionalTimeQuery(c, "to"); !ok {
		return
	}

	classes, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// GetClass godoc
// @Summary      Get class
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Class ID"
// @Success      200  {object}  ClassWithAvailability
// @Failure      404  {object}  api.ErrorResponse
// @Router       /classes/{id} [get]
func (h *Handler) GetClass(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	class, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// UpdateClass godoc
// @Summary      Update class
// @Description  Partial update. Status may only move from SCHEDULED to COMPLETED or CANCELLED.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Class ID"
// @Param        request  body      UpdateClassRequest  true  "Fields to change"
// @Success      200      {object}  Class
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /classes/{id} [put]
func (h *Handler) UpdateClass(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	class, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass godoc
// @Summary      Delete class
// @Tags         classes
// @Security     BearerAuth
// @Param        id  path  string  true  "Class ID"
// @Success      204
// @Router       /classes/{id} [delete]
func (h *Handler) DeleteClass(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BookClass godoc
// @Summary      Book class
// @Description  Books the caller, or user_id when the caller is front desk staff.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string            true   "Class ID"
// @Param        request  body      BookClassRequest  false  "Optional user to book"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /classes/{id}/bookings [post]
func (h *Handler) BookClass(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	classID, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req BookClassRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	booking, err := h.service.BookClass(c.Request.Context(), actor, classID, req.UserID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Removes the caller's booking, or that of user_id when the caller is front desk staff.
// @Tags         bookings
// @Security     BearerAuth
// @Param        id       path   string  true   "Class ID"
// @Param        user_id  query  string  false  "User whose booking is cancelled"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /classes/{id}/bookings [delete]
func (h *Handler) CancelBooking(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	classID, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := api.OptionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), actor, classID, userID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClassBookings godoc
// @Summary      List bookings of a class
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Class ID"
// @Success      200  {array}   BookingWithDetails
// @Router       /classes/{id}/bookings [get]
func (h *Handler) ListClassBookings(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	classID, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), actor, classID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// MarkAttendance godoc
// @Summary      Mark attendance
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Booking ID"
// @Param        request  body      AttendanceRequest  true  "Attendance flag"
// @Success      200      {object}  Booking
// @Failure      404      {object}  api.ErrorResponse
// @Router       /bookings/{id}/attendance [put]
func (h *Handler) MarkAttendance(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	bookingID, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req AttendanceRequest
	if !api.BindJSON(c, &req) {
		return
	}

	booking, err := h.service.MarkAttendance(c.Request.Context(), actor, bookingID, *req.Attended)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MyBookings godoc
// @Summary      List bookings of the current user
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  BookingWithDetails
// @Router       /me/bookings [get]
func (h *Handler) MyBookings(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListUserBookings godoc
// @Summary      List bookings of a user
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {array}   BookingWithDetails
// @Router       /users/{id}/bookings [get]
func (h *Handler) ListUserBookings(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	userID, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), actor, userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// TrainerStats godoc
// @Summary      Class and attendance counts per trainer
// @Description  Counts classes starting in the range. Defaults to the last 30 days.
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Lower bound (RFC3339)"
// @Param        to    query     string  false  "Upper bound (RFC3339)"
// @Success      200   {array}   TrainerStats
// @Failure      400   {object}  api.ErrorResponse
// @Router       /classes/stats [get]
func (h *Handler) TrainerStats(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	from, to, ok := api.TimeRangeQuery(c, defaultStatsWindow)
	if !ok {
		return
	}

	stats, err := h.service.TrainerStats(c.Request.Context(), actor, from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
