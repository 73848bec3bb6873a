package std

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlugin 模拟插件
type MockPlugin struct {
	mock.Mock
}

func (m *MockPlugin) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlugin) Bind(router fiber.Router) {
	m.Called(router)
	router.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
}

// hookLifecycle 记录启停钩子
type hookLifecycle struct {
	starts []func(context.Context) error
	stops  []func(context.Context) error
}

func (my *hookLifecycle) Append(start, stop func(context.Context) error) {
	my.starts = append(my.starts, start)
	my.stops = append(my.stops, stop)
}

func newTestConfig() *Config {
	c := &Config{Mode: "test"}
	c.Live.Host = "127.0.0.1"
	return c
}

func TestNewServer(t *testing.T) {
	cfg := newTestConfig()
	app := NewFiber(cfg)
	lc := &hookLifecycle{}

	plugin := &MockPlugin{}
	plugin.On("Path").Return("//api/")
	plugin.On("Bind", mock.Anything).Return()

	s := NewServer(lc, cfg, app, PluginGroup{Plugins: []Plugin{plugin, NewHealth()}})
	plugin.AssertExpectations(t)
	assert.Empty(t, s.Addr())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"ok"`)

	require.Len(t, lc.starts, 1)
	require.NoError(t, lc.starts[0](context.Background()))
	assert.NotEmpty(t, s.Addr())
	assert.Contains(t, s.URL(), "http://127.0.0.1:")

	resp, err = http.Get(s.URL() + "health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, lc.stops[0](context.Background()))
}

func TestNewServerListenError(t *testing.T) {
	cfg := newTestConfig()
	cfg.Live.Host = "256.0.0.1"
	lc := &hookLifecycle{}
	NewServer(lc, cfg, NewFiber(cfg), PluginGroup{})
	assert.Error(t, lc.starts[0](context.Background()))
	assert.NoError(t, lc.stops[0](context.Background()))
}
