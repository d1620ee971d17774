package plan

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreatePlan godoc
// @Summary      Create membership plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePlanRequest  true  "Plan data"
// @Success      201      {object}  MembershipPlan
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPlans godoc
// @Summary      List membership plans
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active plans"
// @Success      200     {array}   MembershipPlan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	plans, err := h.service.List(c.Request.Context(), actor, c.Query("active") == "true")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary      Get membership plan
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Plan ID"
// @Success      200  {object}  MembershipPlan
// @Failure      404  {object}  api.ErrorResponse
// @Router       /plans/{id} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdatePlan godoc
// @Summary      Update membership plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Plan ID"
// @Param        request  body      UpdatePlanRequest  true  "Fields to change"
// @Success      200      {object}  MembershipPlan
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /plans/{id} [put]
func (h *Handler) UpdatePlan(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeletePlan godoc
// @Summary      Delete membership plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id  path  string  true  "Plan ID"
// @Success      204
// @Failure      409  {object}  api.ErrorResponse
// @Router       /plans/{id} [delete]
func (h *Handler) DeletePlan(c *gin.Context) {
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
