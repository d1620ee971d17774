package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates user by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Returns new access token using a valid refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "Refresh token payload"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !api.BindJSON(c, &req) {
		return
	}

	accessToken, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user,
	})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary      Create user
// @Description  Registers staff or a client. Clients may be created without a password.
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateUserRequest  true  "User data"
// @Success      201      {object}  User
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        role  query     string  false  "Filter by role"
// @Success      200   {array}   User
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var role *auth.Role
	if r := c.Query("role"); r != "" {
		rr := auth.Role(r)
		role = &rr
	}

	users, err := h.service.List(c.Request.Context(), actor, role)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  User
// @Failure      404  {object}  api.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// SetActive godoc
// @Summary      Activate or deactivate user
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string            true  "User ID"
// @Param        request  body  SetActiveRequest  true  "Active flag"
// @Success      200      {object}  api.MessageResponse
// @Router       /users/{id}/active [patch]
func (h *Handler) SetActive(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), actor, id, *req.Active); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "User updated"})
}

// SetPassword godoc
// @Summary      Set user password
// @Description  Sets a password and activates the account.
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string              true  "User ID"
// @Param        request  body  SetPasswordRequest  true  "New password"
// @Success      200      {object}  api.MessageResponse
// @Router       /users/{id}/password [put]
func (h *Handler) SetPassword(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPasswordRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetPassword(c.Request.Context(), actor, id, req.Password); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Password updated"})
}

// DeleteUser godoc
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Router       /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
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
