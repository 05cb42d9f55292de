package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config"
	"github.com/Aman-ydav/CareSync-sub000/logger"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		Port:            "0",
		JWTSecret:       "test-secret",
		SlotLockTTL:     time.Second,
		SlotLockWait:    time.Second,
		ShutdownTimeout: time.Second,
		CORSOrigins:     []string{"*"},
	}
}

func TestStartRequiresConfig(t *testing.T) {
	assert.Error(t, Start(Options{}))
}

func TestStartRunsMigrationsWithoutWebServer(t *testing.T) {
	var migrated, jobsStarted bool
	err := Start(Options{
		Config:           testConfig(),
		MigrationEnabled: true,
		MigrationHandler: func(ctx context.Context, deps *Deps) error {
			migrated = true
			assert.NotNil(t, deps.Services)
			return nil
		},
		JobsEnabled: true,
		JobsHandler: func(deps *Deps) (func(context.Context), error) {
			jobsStarted = true
			return func(context.Context) {}, nil
		},
	})
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.False(t, jobsStarted)
}

func TestStartReportsMigrationFailure(t *testing.T) {
	err := Start(Options{
		Config:           testConfig(),
		MigrationEnabled: true,
		MigrationHandler: func(ctx context.Context, deps *Deps) error {
			return errors.New("index build failed")
		},
	})
	assert.ErrorContains(t, err, "index build failed")
}

func TestBuildServicesWithoutAssistant(t *testing.T) {
	deps := &Deps{Config: testConfig(), Metrics: NewMetrics()}
	closeAssistant, err := BuildServices(context.Background(), deps)
	require.NoError(t, err)
	defer closeAssistant()

	require.NotNil(t, deps.Services)
	_, err = deps.Services.Assistant.Chat(context.Background(), "hello", nil)
	assert.True(t, util.IsKind(err, util.KindUnavailable))
}

func TestNewEngineEchoesRequestID(t *testing.T) {
	engine := NewEngine(testConfig(), NewMetrics())
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(logger.RequestIDHeader, "req-1")
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(logger.RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfig(t *testing.T) {
	open := corsConfig(nil)
	assert.True(t, open.AllowAllOrigins)
	assert.False(t, open.AllowCredentials)

	restricted := corsConfig([]string{"https://app.caresync.dev"})
	assert.False(t, restricted.AllowAllOrigins)
	assert.True(t, restricted.AllowCredentials)
	assert.Equal(t, []string{"https://app.caresync.dev"}, restricted.AllowOrigins)
}
