package user

import (
	"bytes"
	"context"
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

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func (m *MockService) GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) List(ctx context.Context, actor auth.Actor, role *auth.Role) ([]User, error) {
	args := m.Called(ctx, actor, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockService) SetActive(ctx context.Context, actor auth.Actor, id uuid.UUID, active bool) error {
	return m.Called(ctx, actor, id, active).Error(0)
}

func (m *MockService) SetPassword(ctx context.Context, actor auth.Actor, id uuid.UUID, password string) error {
	return m.Called(ctx, actor, id, password).Error(0)
}

func (m *MockService) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockService) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func setupRouter(h *Handler, actor *auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if actor != nil {
		r.Use(func(c *gin.Context) {
			auth.SetActor(c, *actor)
			c.Next()
		})
	}
	r.POST("/auth/login", h.Login)
	r.GET("/me", h.GetMe)
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	req := LoginRequest{Email: "a@example.com", Password: "password123"}
	svc.On("Login", mock.Anything, req).Return(&User{ID: uuid.New(), Email: "a@example.com"}, "access", "refresh", nil)

	router := setupRouter(NewHandler(svc), nil)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
}

func TestHandler_LoginInvalidCredentials(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, "", "", ErrInvalidCredentials)

	router := setupRouter(NewHandler(svc), nil)

	body := []byte(`{"email":"a@example.com","password":"nope"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestHandler_LoginValidationError(t *testing.T) {
	router := setupRouter(NewHandler(new(MockService)), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":"bad"}`))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetMeRequiresActor(t *testing.T) {
	router := setupRouter(NewHandler(new(MockService)), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_CreateUserConflict(t *testing.T) {
	actor := auth.Actor{UserID: uuid.New(), Role: auth.RoleReceptionist}
	svc := new(MockService)
	svc.On("Create", mock.Anything, actor, mock.Anything).Return(nil, ErrCedulaExists)

	router := setupRouter(NewHandler(svc), &actor)

	body := []byte(`{"name":"C","email":"c@example.com","role":"CLIENT","cedula":"1"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_GetUser(t *testing.T) {
	actor := auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}
	id := uuid.New()
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, actor, id).Return(nil, ErrUserNotFound)

	router := setupRouter(NewHandler(svc), &actor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteUserForbidden(t *testing.T) {
	actor := auth.Actor{UserID: uuid.New(), Role: auth.RoleTrainer}
	id := uuid.New()
	svc := new(MockService)
	svc.On("Delete", mock.Anything, actor, id).Return(auth.ErrForbidden)

	router := setupRouter(NewHandler(svc), &actor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+id.String(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
