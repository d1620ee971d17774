package plan

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

func setupRouter(repo Repository, actor auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(repo))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetActor(c, actor)
		c.Next()
	})
	r.POST("/plans", h.CreatePlan)
	r.GET("/plans/:id", h.GetPlan)
	r.DELETE("/plans/:id", h.DeletePlan)
	return r
}

func TestHandler_CreatePlan(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(&MembershipPlan{ID: uuid.New(), Name: "Monthly", DurationDays: 30, Active: true}, nil)

	body, _ := json.Marshal(CreatePlanRequest{Name: "Monthly", DurationDays: 30, PriceCents: 50000})
	req := httptest.NewRequest(http.MethodPost, "/plans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(repo, receptionist).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var p MembershipPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Monthly", p.Name)
}

func TestHandler_CreatePlanDuplicateName(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, ErrPlanNameExists)

	body, _ := json.Marshal(CreatePlanRequest{Name: "Monthly", DurationDays: 30})
	req := httptest.NewRequest(http.MethodPost, "/plans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(repo, receptionist).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_GetPlanBadID(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(new(MockRepository), receptionist).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetPlanNotFound(t *testing.T) {
	repo := new(MockRepository)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, ErrPlanNotFound)

	w := httptest.NewRecorder()
	setupRouter(repo, receptionist).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeletePlanAdminOnly(t *testing.T) {
	repo := new(MockRepository)

	w := httptest.NewRecorder()
	setupRouter(repo, receptionist).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/plans/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
