package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ichaly/ideabase/erd"
	"github.com/ichaly/ideabase/log"
)

// State 预览状态
type State int32

const (
	// Watching 等待文件变化
	Watching State = iota
	// Redrawing 正在重新绘制
	Redrawing
)

func (s State) String() string {
	switch s {
	case Watching:
		return "watching"
	case Redrawing:
		return "redrawing"
	default:
		return "unknown"
	}
}

// Drawer 执行一次完整绘制
type Drawer interface {
	Draw(ctx context.Context, output string, view, cleanup bool) error
}

// Display 展示绘制结果
type Display interface {
	Reload(path string) error
}

// View 实时预览的状态机，刷新串行执行
type View struct {
	mu      sync.Mutex
	state   atomic.Int32
	drawer  Drawer
	display Display
	output  string
}

// NewView 创建预览状态机，初始为Watching
func NewView(drawer Drawer, display Display, output string) *View {
	return &View{drawer: drawer, display: display, output: output}
}

// State 当前状态
func (my *View) State() State {
	return State(my.state.Load())
}

// Output 图片输出路径
func (my *View) Output() string {
	return my.output
}

// SetDrawer 替换绘制流程，配置变更时使用
func (my *View) SetDrawer(drawer Drawer) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.drawer = drawer
}

// Init 首次绘制，任何错误都返回给调用方
func (my *View) Init(ctx context.Context) error {
	my.mu.Lock()
	defer my.mu.Unlock()

	my.state.Store(int32(Redrawing))
	defer my.state.Store(int32(Watching))

	if err := my.drawer.Draw(ctx, my.output, false, true); err != nil {
		return err
	}
	return my.display.Reload(my.output)
}

// Refresh 重新绘制并通知展示端
// 加载失败时保留上一张图片并返回nil
func (my *View) Refresh(ctx context.Context) error {
	my.mu.Lock()
	defer my.mu.Unlock()

	my.state.Store(int32(Redrawing))
	defer my.state.Store(int32(Watching))

	if err := my.drawer.Draw(ctx, my.output, false, true); err != nil {
		if errors.Is(err, erd.ErrLoad) {
			log.Debug().Err(err).Msg("模型加载失败，保留上一次的图片")
			return nil
		}
		return err
	}
	return my.display.Reload(my.output)
}
