package payment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
)

const defaultTotalsWindow = 30 * 24 * time.Hour

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreatePayment godoc
// @Summary      Record payment
// @Description  Records a payment for a user, optionally tied to one of their memberships. A transaction id is generated when none is given.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePaymentRequest  true  "Payment data"
// @Success      201      {object}  Payment
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
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

// ListPayments godoc
// @Summary      List payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        user_id        query     string  false  "Filter by user"
// @Param        membership_id  query     string  false  "Filter by membership"
// @Param        status         query     string  false  "PENDING, COMPLETED, FAILED or REFUNDED"
// @Param        from           query     string  false  "Created at lower bound (RFC3339)"
// @Param        to             query     string  false  "Created at upper bound (RFC3339)"
// @Success      200            {array}   Payment
// @Router       /payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var filter ListFilter
	if filter.UserID, ok = api.OptionalUUIDQuery(c, "user_id"); !ok {
		return
	}
	if filter.MembershipID, ok = api.OptionalUUIDQuery(c, "membership_id"); !ok {
		return
	}
	if filter.From, ok = api.OptionalTimeQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = api.OptionalTimeQuery(c, "to"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}

	payments, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// MyPayments godoc
// @Summary      List payments of the current user
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Payment
// @Router       /me/payments [get]
func (h *Handler) MyPayments(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	payments, err := h.service.List(c.Request.Context(), actor, ListFilter{UserID: &actor.UserID})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetPayment godoc
// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  Payment
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payments/{id} [get]
func (h *Handler) GetPayment(c *gin.Context) {
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

// UpdatePaymentStatus godoc
// @Summary      Change payment status
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Payment ID"
// @Param        request  body      UpdateStatusRequest  true  "New status"
// @Success      200      {object}  Payment
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /payments/{id}/status [put]
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// PaymentTotals godoc
// @Summary      Completed payment totals per method
// @Description  Defaults to the last 30 days.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Lower bound (RFC3339)"
// @Param        to    query     string  false  "Upper bound (RFC3339)"
// @Success      200   {array}   MethodTotal
// @Router       /payments/totals [get]
func (h *Handler) PaymentTotals(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	start, end, ok := api.TimeRangeQuery(c, defaultTotalsWindow)
	if !ok {
		return
	}

	totals, err := h.service.TotalsByMethod(c.Request.Context(), actor, start, end)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
