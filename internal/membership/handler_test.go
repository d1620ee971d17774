package membership

import (
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
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

func setupRouter(svc Service, actor auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetActor(c, actor)
		c.Next()
	})
	r.GET("/memberships/expiring", h.ExpiringMemberships)
	r.GET("/memberships/:id", h.GetMembership)
	r.POST("/memberships/:id/suspend", h.SuspendMembership)
	r.POST("/validations/membership/:id", h.ValidateMembership)
	r.POST("/validations/user/:id", h.ValidateUser)
	r.POST("/validations/cedula/:cedula", h.ValidateCedula)
	return r
}

func TestHandler_ValidateCedulaUnknownUser(t *testing.T) {
	f := newFixture()
	f.users.On("FindByCedula", mock.Anything, "0000").Return(nil, user.ErrUserNotFound)
	expectLog(f, ValidationByCedula, false)

	router := setupRouter(f.svc, trainer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/validations/cedula/0000", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonUserNotFound, result.Reason)
	f.repo.AssertExpectations(t)
}

func TestHandler_ValidateMalformedIDRecordsAttempt(t *testing.T) {
	for _, path := range []string{"/validations/membership/abc", "/validations/user/abc"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture()
			f.repo.On("CreateValidationLog", mock.Anything, mock.MatchedBy(func(l *ValidationLog) bool {
				return l.Identifier == "abc" && !l.Success
			})).Return(nil).Once()

			router := setupRouter(f.svc, trainer)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var result ValidationResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.False(t, result.Valid)
			assert.Equal(t, ReasonInvalidIdentifier, result.Reason)
			f.repo.AssertExpectations(t)
		})
	}
}

func TestHandler_ExpiringInvalidDays(t *testing.T) {
	router := setupRouter(newFixture().svc, trainer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/memberships/expiring?days=soon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/memberships/expiring?days=-2", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetMembershipNotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, ErrMembershipNotFound)

	router := setupRouter(f.svc, receptionist)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/memberships/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SuspendForbiddenForTrainer(t *testing.T) {
	router := setupRouter(newFixture().svc, trainer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/memberships/"+uuid.New().String()+"/suspend", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
