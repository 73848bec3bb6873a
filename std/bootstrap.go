package std

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ichaly/ideabase/log"
	"go.uber.org/fx"
)

var (
	// Version 当前版本号
	Version = "V0.0.0"
	// GitCommit Git提交哈希
	GitCommit = "Unknown"
	// BuildTime 构建时间
	BuildTime = ""

	// 路径规范化正则表达式
	reg = regexp.MustCompile(`/+`)
)

// Lifecycle 生命周期接口
type Lifecycle interface {
	Append(start, stop func(context.Context) error)
}

// Plugin 插件接口
type Plugin interface {
	// Path 插件基础路径
	Path() string
	// Bind 注册路由
	Bind(fiber.Router)
}

// PluginGroup 插件组
type PluginGroup struct {
	fx.In
	Plugins []Plugin `group:"plugin"`
}

// Server 预览服务
type Server struct {
	app *fiber.App
	cfg *Config
	ln  net.Listener
}

// NewServer 注册插件并挂载启停钩子，端口为0时由系统分配
func NewServer(l Lifecycle, c *Config, a *fiber.App, g PluginGroup) *Server {
	if BuildTime == "" {
		BuildTime = time.Now().Format(time.DateTime)
	}

	// 路由缓存，避免重复创建相同基础路径的路由组
	routers := map[string]fiber.Router{"/": a}
	getRouter := func(basePath string) fiber.Router {
		// 规范化路径,将连续的多个斜杠(/)替换为单个斜杠且移除字符串右侧的斜杠
		base := fmt.Sprintf("%s/", strings.TrimRight(reg.ReplaceAllString(basePath, "/"), "/"))
		if r, exists := routers[base]; exists {
			return r
		}
		r := a.Group(base)
		routers[base] = r
		return r
	}
	for _, p := range g.Plugins {
		p.Bind(getRouter(p.Path()))
	}

	my := &Server{app: a, cfg: c}
	l.Append(my.start, my.stop)
	log.Debug().Str("version", Version).Str("commit", GitCommit).Str("build", BuildTime).Msg("预览服务已装配")
	return my
}

func (my *Server) start(_ context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(my.cfg.Live.Host, fmt.Sprint(my.cfg.Live.Port)))
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	my.ln = ln
	// 异步启动服务器
	go func() {
		if err := my.app.Listener(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("预览服务异常退出")
		}
	}()
	log.Info().Str("url", my.URL()).Msg("预览服务已启动")
	return nil
}

func (my *Server) stop(ctx context.Context) error {
	if my.ln == nil {
		return nil
	}
	err := my.app.ShutdownWithContext(ctx)
	log.Debug().Msg("预览服务已关闭")
	return err
}

// Addr 实际监听地址，启动前为空
func (my *Server) Addr() string {
	if my.ln == nil {
		return ""
	}
	return my.ln.Addr().String()
}

// URL 预览页面地址
func (my *Server) URL() string {
	return "http://" + my.Addr() + "/"
}
