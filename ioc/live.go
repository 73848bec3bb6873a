package ioc

import (
	"github.com/ichaly/ideabase/erd"
	"github.com/ichaly/ideabase/live"
	"github.com/ichaly/ideabase/std"
)

// Target 预览图片的输出路径
type Target string

func newDrawer(c *std.Config, cache *std.Cache) (*erd.Drawer, error) {
	return erd.NewDrawerFromConfig(c, erd.WithSourceCache(cache))
}

func newView(d *erd.Drawer, p *live.Preview, t Target) *live.View {
	return live.NewView(d, p, string(t))
}

// 实时预览模块
func init() {
	Add(Module("live",
		Provide(
			newDrawer,
			newView,
			live.NewPreview,
			live.NewWatcher,
			Annotate(
				func(p *live.Preview) std.Plugin { return p },
				ResultTags(`group:"plugin"`),
			),
		),
		Invoke(live.NewLoop),
	))
}
