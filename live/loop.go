package live

import (
	"context"

	"github.com/ichaly/ideabase/erd"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/browser"
	"go.uber.org/fx"
)

// NewWatcher 监听全部模型文件
func NewWatcher(c *std.Config) (*std.Watcher, error) {
	w, err := std.NewWatcher(std.WithDebounceTime(c.Live.Debounce))
	if err != nil {
		return nil, err
	}
	if err := w.Add(c.Paths...); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

// Loop 把文件监听、配置变更和页面关闭串到预览状态机上
type Loop struct {
	cfg       *std.Config
	konfig    *std.Konfig
	validator *std.Validator
	cache     *std.Cache
	view      *View
	preview   *Preview
	server    *std.Server
	watcher   *std.Watcher
	shutdown  fx.Shutdowner
	open      func(string) error
	ctx       context.Context
	cancel    context.CancelFunc
}

// LoopParams 预览循环依赖
type LoopParams struct {
	fx.In
	Lifecycle  std.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *std.Config
	Konfig     *std.Konfig
	Validator  *std.Validator
	Cache      *std.Cache
	View       *View
	Preview    *Preview
	Server     *std.Server
	Watcher    *std.Watcher
}

// NewLoop 创建预览循环并挂载启停钩子
func NewLoop(p LoopParams) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	my := &Loop{
		cfg:       p.Config,
		konfig:    p.Konfig,
		validator: p.Validator,
		cache:     p.Cache,
		view:      p.View,
		preview:   p.Preview,
		server:    p.Server,
		watcher:   p.Watcher,
		shutdown:  p.Shutdowner,
		open:      browser.OpenURL,
		ctx:       ctx,
		cancel:    cancel,
	}
	p.Lifecycle.Append(my.start, my.stop)
	return my
}

// start 首次绘制失败直接返回错误，之后的失败只记录日志
func (my *Loop) start(ctx context.Context) error {
	if err := my.view.Init(ctx); err != nil {
		return err
	}

	if len(my.cfg.Paths) > 0 {
		my.watcher.OnChange(my.onChange)
		if err := my.watcher.Start(); err != nil {
			return err
		}
	}
	if my.konfig.FilePath() != "" {
		my.konfig.OnConfigChange(func(*koanf.Koanf) { my.reconfigure() })
		if err := my.konfig.WatchConfig(my.cfg.Live.Debounce); err != nil {
			log.Warn().Err(err).Msg("配置文件监听启动失败")
		}
	}

	go my.preview.Watch(my.ctx.Done())
	go my.waitClosed()

	if my.cfg.Live.Open {
		if err := my.open(my.server.URL()); err != nil {
			log.Warn().Err(err).Str("url", my.server.URL()).Msg("打开浏览器失败")
		}
	}
	log.Info().Strs("files", my.cfg.Paths).Str("url", my.server.URL()).Msg("开始监听模型文件")
	return nil
}

// stop 取消进行中的重绘
func (my *Loop) stop(context.Context) error {
	my.cancel()
	my.konfig.StopWatch()
	return my.watcher.Stop()
}

// waitClosed 页面关闭后退出
func (my *Loop) waitClosed() {
	select {
	case <-my.ctx.Done():
	case <-my.preview.Closed():
		log.Info().Msg("预览页面已关闭")
		if err := my.shutdown.Shutdown(); err != nil {
			log.Error().Err(err).Msg("退出失败")
		}
	}
}

// reconfigure 配置文件变化后重建绘制流程，颜色与字号立即生效
func (my *Loop) reconfigure() {
	cfg, err := std.NewConfig(my.konfig, my.validator)
	if err != nil {
		log.Error().Err(err).Msg("新配置无效，继续使用原配置")
		return
	}
	// 监听的文件列表不随配置变化
	cfg.Paths = my.cfg.Paths
	drawer, err := erd.NewDrawerFromConfig(cfg, erd.WithSourceCache(my.cache))
	if err != nil {
		log.Error().Err(err).Msg("重建绘制流程失败")
		return
	}
	my.view.SetDrawer(drawer)
	my.refresh()
}

// onChange 模型文件变化回调
func (my *Loop) onChange(paths []string) {
	log.Debug().Strs("files", paths).Msg("检测到模型文件变化")
	my.refresh()
}

func (my *Loop) refresh() {
	if my.ctx.Err() != nil {
		return
	}
	if err := my.view.Refresh(my.ctx); err != nil {
		if my.ctx.Err() != nil {
			log.Debug().Msg("预览已停止，放弃本次重绘")
			return
		}
		log.Error().Err(err).Msg("重新绘制失败")
	}
}
