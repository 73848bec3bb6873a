package live

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ichaly/ideabase/std"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type hookLifecycle struct {
	starts []func(context.Context) error
	stops  []func(context.Context) error
}

func (my *hookLifecycle) Append(start, stop func(context.Context) error) {
	my.starts = append(my.starts, start)
	my.stops = append(my.stops, stop)
}

func (my *hookLifecycle) start(t *testing.T) {
	for _, s := range my.starts {
		require.NoError(t, s(context.Background()))
	}
}

func (my *hookLifecycle) stop(t *testing.T) {
	for i := len(my.stops) - 1; i >= 0; i-- {
		assert.NoError(t, my.stops[i](context.Background()))
	}
}

type fakeShutdowner struct {
	called atomic.Bool
}

func (my *fakeShutdowner) Shutdown(...fx.ShutdownOption) error {
	my.called.Store(true)
	return nil
}

func newTestLoop(t *testing.T, c *std.Config, drawer Drawer) (*Loop, *hookLifecycle, *fakeShutdowner) {
	t.Helper()
	k, err := std.NewKonfig(std.WithEnvDir(t.TempDir()))
	require.NoError(t, err)
	v, err := std.NewValidator()
	require.NoError(t, err)
	cache, err := std.NewCache(context.Background(), "erd", time.Minute)
	require.NoError(t, err)
	w, err := NewWatcher(c)
	require.NoError(t, err)

	lc := &hookLifecycle{}
	preview := NewPreview(c)
	server := std.NewServer(lc, c, std.NewFiber(c), std.PluginGroup{Plugins: []std.Plugin{preview}})
	sd := &fakeShutdowner{}
	loop := NewLoop(LoopParams{
		Lifecycle:  lc,
		Shutdowner: sd,
		Config:     c,
		Konfig:     k,
		Validator:  v,
		Cache:      cache,
		View:       NewView(drawer, preview, filepath.Join(t.TempDir(), "erd.svg")),
		Preview:    preview,
		Server:     server,
		Watcher:    w,
	})
	return loop, lc, sd
}

func TestLoopRefreshOnChange(t *testing.T) {
	models := filepath.Join(t.TempDir(), "models.yml")
	require.NoError(t, os.WriteFile(models, []byte("models: []\n"), 0644))

	c := newLiveConfig()
	c.Paths = []string{models}
	c.Live.Open = true
	drawer := &fakeDrawer{}
	loop, lc, _ := newTestLoop(t, c, drawer)

	var opened string
	loop.open = func(url string) error {
		opened = url
		return nil
	}
	lc.start(t)
	defer lc.stop(t)

	assert.Equal(t, int64(1), loop.preview.Version())
	assert.Equal(t, loop.server.URL(), opened)

	resp, err := http.Get(loop.server.URL() + "state")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, os.WriteFile(models, []byte("models:\n  - name: User\n"), 0644))
	assert.Eventually(t, func() bool {
		return loop.preview.Version() == 2
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, Watching, loop.view.State())
}

func TestLoopInitialDrawFails(t *testing.T) {
	c := newLiveConfig()
	drawer := &fakeDrawer{errs: []error{os.ErrNotExist}}
	_, lc, _ := newTestLoop(t, c, drawer)

	// 服务先启动，预览循环启动失败
	require.NoError(t, lc.starts[0](context.Background()))
	defer func() { _ = lc.stops[0](context.Background()) }()
	assert.ErrorIs(t, lc.starts[1](context.Background()), os.ErrNotExist)
}

func TestLoopShutdownWhenClosed(t *testing.T) {
	c := newLiveConfig()
	c.Live.CloseTimeout = 50 * time.Millisecond
	loop, lc, sd := newTestLoop(t, c, &fakeDrawer{})
	lc.start(t)
	defer lc.stop(t)

	resp, err := http.Get(loop.server.URL() + "state")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Eventually(t, sd.called.Load, 3*time.Second, 20*time.Millisecond)
}

// blockingDrawer 首次绘制直接返回，之后阻塞到ctx结束
type blockingDrawer struct {
	calls   atomic.Int32
	started chan struct{}
	err     atomic.Value
}

func (my *blockingDrawer) Draw(ctx context.Context, _ string, _, _ bool) error {
	if my.calls.Add(1) == 1 {
		return nil
	}
	close(my.started)
	<-ctx.Done()
	my.err.Store(ctx.Err())
	return ctx.Err()
}

func TestLoopStopCancelsRefresh(t *testing.T) {
	c := newLiveConfig()
	drawer := &blockingDrawer{started: make(chan struct{})}
	loop, lc, _ := newTestLoop(t, c, drawer)
	lc.start(t)

	done := make(chan struct{})
	go func() {
		loop.onChange([]string{"models.yml"})
		close(done)
	}()
	<-drawer.started
	lc.stop(t)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("停止后重绘没有结束")
	}
	assert.Equal(t, context.Canceled, drawer.err.Load())
	assert.Equal(t, Watching, loop.view.State())

	// 停止后的变化不再触发绘制
	loop.onChange([]string{"models.yml"})
	assert.Equal(t, int32(2), drawer.calls.Load())
}
