package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/metrics"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-test-secret"

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Routes(r, secret, services.New(services.Stores{}, services.Options{}), metrics.New(prometheus.NewRegistry()))
	return r
}

func get(t *testing.T, r *gin.Engine, path string, as role.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if as != "" {
		token, err := authorization.SignToken(secret, "u1", as, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := newEngine()
	assert.Equal(t, http.StatusOK, get(t, r, "/health", "").Code)

	w := get(t, r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "caresync_jobs_auto_completed_total")
}

func TestAPIRequiresBearerToken(t *testing.T) {
	r := newEngine()
	assert.Equal(t, http.StatusUnauthorized, get(t, r, APIPrefix+"/appointments", "").Code)
	assert.Equal(t, http.StatusForbidden, get(t, r, APIPrefix+"/stats", role.PATIENT).Code)
}
