package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"deliverus-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(req *models.Requester, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	r.Use(RequestLogger(log))
	if req != nil {
		r.Use(func(c *gin.Context) { c.Set(requesterKey, *req) })
	}
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ping", handlers...)
	return r
}

func TestRoleRequired(t *testing.T) {
	owner := models.Requester{ID: 1, Role: models.RoleOwner}
	customer := models.Requester{ID: 2, Role: models.RoleCustomer}

	w := httptest.NewRecorder()
	newTestEngine(&owner, RoleRequired(models.RoleOwner)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	newTestEngine(&customer, RoleRequired(models.RoleOwner)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"Forbidden"`)

	w = httptest.NewRecorder()
	newTestEngine(nil, RoleRequired(models.RoleOwner)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newTestEngine(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
