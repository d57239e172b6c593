package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "enova_backend/internal/http"
	"enova_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerConfig struct {
	functionKey string
}

func (c routerConfig) GetHTTPAddr() string      { return ":0" }
func (c routerConfig) GetCORSAllowAll() bool    { return true }
func (c routerConfig) GetCORSOrigins() []string { return []string{"*"} }
func (c routerConfig) GetFunctionKey() string   { return c.functionKey }

type healthFunc func(ctx context.Context) error

func (f healthFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "echo") })
	ctx.API.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, "open") })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	return &apphttp.App{
		Config:  routerConfig{functionKey: "k"},
		Logger:  logger.NewWithWriter("production", io.Discard),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthAndReady(t *testing.T) {
	engine := New(newApp(healthFunc(func(context.Context) error { return nil })))

	assert.Equal(t, http.StatusOK, get(engine, "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/ready").Code)
}

func TestReadyReportsCacheFailure(t *testing.T) {
	engine := New(newApp(healthFunc(func(context.Context) error { return errors.New("redis down") })))

	assert.Equal(t, http.StatusServiceUnavailable, get(engine, "/api/ready").Code)
}

func TestReadyChecksEveryDependency(t *testing.T) {
	var calls []string
	checker := func(name string, err error) healthFunc {
		return func(context.Context) error {
			calls = append(calls, name)
			return err
		}
	}

	engine := New(newApp(apphttp.HealthCheckers{
		checker("cache", nil),
		checker("enova", errors.New("enova unreachable")),
	}))
	assert.Equal(t, http.StatusServiceUnavailable, get(engine, "/api/ready").Code)
	assert.Equal(t, []string{"cache", "enova"}, calls)

	calls = nil
	engine = New(newApp(apphttp.HealthCheckers{checker("cache", nil), checker("enova", nil)}))
	assert.Equal(t, http.StatusOK, get(engine, "/api/ready").Code)
	assert.Equal(t, []string{"cache", "enova"}, calls)
}

func TestModuleRoutesAndFunctionKey(t *testing.T) {
	engine := New(newApp(nil))

	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/echo").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/echo?code=k").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/open").Code)
}
