package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// RespondError writes err with the status derived from its kind. Internal
// errors are logged and hidden from the client.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(status, ErrorResponse{Error: appErr.Message})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// Actor returns the authenticated caller or writes 401 and returns false.
func Actor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
		return auth.Actor{}, false
	}
	return actor, true
}

// UUIDParam parses the named path parameter or writes 400 and returns false.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// OptionalUUIDQuery parses an optional query parameter.
func OptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return nil, false
	}
	return &id, true
}

// OptionalTimeQuery parses an optional RFC3339 query parameter.
func OptionalTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return nil, false
	}
	return &t, true
}

// TimeRangeQuery reads the from and to query parameters. A missing to means
// now and a missing from means window before to.
func TimeRangeQuery(c *gin.Context, window time.Duration) (from, to time.Time, ok bool) {
	fromQ, ok := OptionalTimeQuery(c, "from")
	if !ok {
		return from, to, false
	}
	toQ, ok := OptionalTimeQuery(c, "to")
	if !ok {
		return from, to, false
	}

	to = time.Now()
	if toQ != nil {
		to = *toQ
	}
	from = to.Add(-window)
	if fromQ != nil {
		from = *fromQ
	}
	return from, to, true
}
