package membership

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateMembership godoc
// @Summary      Create membership
// @Description  Starts a membership for a user on a plan. End date is start plus the plan duration.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateMembershipRequest  true  "Membership data"
// @Success      201      {object}  Membership
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) CreateMembership(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreateMembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// ListMemberships godoc
// @Summary      List memberships
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        user_id  query     string  false  "Filter by user"
// @Param        status   query     string  false  "ACTIVE, EXPIRED or SUSPENDED"
// @Success      200      {array}   Membership
// @Router       /memberships [get]
func (h *Handler) ListMemberships(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	userID, ok := api.OptionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	filter := ListFilter{UserID: userID}
	if raw := c.Query("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}

	memberships, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// MyMemberships godoc
// @Summary      List memberships of the current user
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Membership
// @Router       /me/memberships [get]
func (h *Handler) MyMemberships(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	memberships, err := h.service.List(c.Request.Context(), actor, ListFilter{UserID: &actor.UserID})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// GetMembership godoc
// @Summary      Get membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Membership ID"
// @Success      200  {object}  Membership
// @Failure      404  {object}  api.ErrorResponse
// @Router       /memberships/{id} [get]
func (h *Handler) GetMembership(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// RenewMembership godoc
// @Summary      Renew membership
// @Description  Restarts the membership from now for the plan duration and reactivates it.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Membership ID"
// @Success      200  {object}  Membership
// @Failure      404  {object}  api.ErrorResponse
// @Router       /memberships/{id}/renew [post]
func (h *Handler) RenewMembership(c *gin.Context) {
	h.transition(c, h.service.Renew)
}

// SuspendMembership godoc
// @Summary      Suspend membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Membership ID"
// @Success      200  {object}  Membership
// @Router       /memberships/{id}/suspend [post]
func (h *Handler) SuspendMembership(c *gin.Context) {
	h.transition(c, h.service.Suspend)
}

// ActivateMembership godoc
// @Summary      Activate membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Membership ID"
// @Success      200  {object}  Membership
// @Router       /memberships/{id}/activate [post]
func (h *Handler) ActivateMembership(c *gin.Context) {
	h.transition(c, h.service.Activate)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error)) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	m, err := op(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// DeleteMembership godoc
// @Summary      Delete membership
// @Tags         memberships
// @Security     BearerAuth
// @Param        id  path  string  true  "Membership ID"
// @Success      204
// @Router       /memberships/{id} [delete]
func (h *Handler) DeleteMembership(c *gin.Context) {
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

// ExpiringMemberships godoc
// @Summary      Memberships expiring soon
// @Description  ACTIVE memberships whose end date is within the next N days, inclusive.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 7)"
// @Success      200   {array}   Membership
// @Failure      400   {object}  api.ErrorResponse
// @Router       /memberships/expiring [get]
func (h *Handler) ExpiringMemberships(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid days"})
			return
		}
		days = n
	}

	memberships, err := h.service.Expiring(c.Request.Context(), actor, days)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// MembershipStats godoc
// @Summary      Membership statistics
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Stats
// @Router       /memberships/stats [get]
func (h *Handler) MembershipStats(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ValidateMembership godoc
// @Summary      Validate by membership id
// @Description  Checks a membership at the door. Every call is recorded in the validation log.
// @Tags         validations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Membership ID"
// @Success      200  {object}  ValidationResult
// @Router       /validations/membership/{id} [post]
func (h *Handler) ValidateMembership(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	result, err := h.service.ValidateByMembershipID(c.Request.Context(), actor, c.Param("id"))
	h.respondValidation(c, result, err)
}

// ValidateUser godoc
// @Summary      Validate by user id
// @Tags         validations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  ValidationResult
// @Router       /validations/user/{id} [post]
func (h *Handler) ValidateUser(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	result, err := h.service.ValidateByUserID(c.Request.Context(), actor, c.Param("id"))
	h.respondValidation(c, result, err)
}

// ValidateCedula godoc
// @Summary      Validate by cedula
// @Tags         validations
// @Security     BearerAuth
// @Produce      json
// @Param        cedula  path      string  true  "National id"
// @Success      200     {object}  ValidationResult
// @Router       /validations/cedula/{cedula} [post]
func (h *Handler) ValidateCedula(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	result, err := h.service.ValidateByCedula(c.Request.Context(), actor, c.Param("cedula"))
	h.respondValidation(c, result, err)
}

// ValidateHoller godoc
// @Summary      Validate by holler code
// @Tags         validations
// @Security     BearerAuth
// @Produce      json
// @Param        holler  path      string  true  "Holler code"
// @Success      200     {object}  ValidationResult
// @Router       /validations/holler/{holler} [post]
func (h *Handler) ValidateHoller(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	result, err := h.service.ValidateByHoller(c.Request.Context(), actor, c.Param("holler"))
	h.respondValidation(c, result, err)
}

func (h *Handler) respondValidation(c *gin.Context, result *ValidationResult, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListValidationLogs godoc
// @Summary      Validation audit log
// @Tags         validations
// @Security     BearerAuth
// @Produce      json
// @Param        user_id        query     string  false  "Filter by user"
// @Param        membership_id  query     string  false  "Filter by membership"
// @Param        limit          query     int     false  "Max rows (default 100)"
// @Success      200            {array}   ValidationLog
// @Router       /validations [get]
func (h *Handler) ListValidationLogs(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	userID, ok := api.OptionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}
	membershipID, ok := api.OptionalUUIDQuery(c, "membership_id")
	if !ok {
		return
	}

	filter := LogFilter{UserID: userID, MembershipID: membershipID}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	logs, err := h.service.ListValidationLogs(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
