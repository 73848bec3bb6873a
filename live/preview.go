package live

import (
	_ "embed"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
)

//go:embed assets/index.html
var indexPage []byte

// Preview 浏览器预览页面，页面轮询/state，版本变化时重新加载图片
type Preview struct {
	path     atomic.Value
	version  atomic.Int64
	lastPoll atomic.Int64

	poll         time.Duration
	closeTimeout time.Duration

	once   sync.Once
	closed chan struct{}
}

// NewPreview 创建预览页面
func NewPreview(c *std.Config) *Preview {
	my := &Preview{
		poll:         c.Live.Poll,
		closeTimeout: c.Live.CloseTimeout,
		closed:       make(chan struct{}),
	}
	my.path.Store("")
	return my
}

func (my *Preview) Path() string {
	return "/"
}

func (my *Preview) Bind(r fiber.Router) {
	r.Get("/", my.index)
	r.Get("/diagram", my.diagram)
	r.Get("/state", my.state)
}

// Reload 更新图片并递增版本
func (my *Preview) Reload(path string) error {
	my.path.Store(path)
	v := my.version.Add(1)
	log.Debug().Int64("version", v).Str("output", path).Msg("预览已刷新")
	return nil
}

// Version 当前图片版本
func (my *Preview) Version() int64 {
	return my.version.Load()
}

// Closed 页面关闭后触发
func (my *Preview) Closed() <-chan struct{} {
	return my.closed
}

// Watch 检测页面是否关闭，至少轮询过一次后超时未再轮询视为关闭
func (my *Preview) Watch(done <-chan struct{}) {
	if my.closeTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(my.poll)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if my.expired(now) {
				my.once.Do(func() { close(my.closed) })
				return
			}
		}
	}
}

func (my *Preview) expired(now time.Time) bool {
	last := my.lastPoll.Load()
	return last > 0 && now.Sub(time.Unix(0, last)) > my.closeTimeout
}

func (my *Preview) index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexPage)
}

func (my *Preview) diagram(c *fiber.Ctx) error {
	path, _ := my.path.Load().(string)
	if path == "" {
		return fiber.ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type(filepath.Ext(path))
	return c.Send(data)
}

func (my *Preview) state(c *fiber.Ctx) error {
	my.lastPoll.Store(time.Now().UnixNano())
	return c.JSON(fiber.Map{
		"version": my.version.Load(),
		"poll":    my.poll.Milliseconds(),
	})
}
