package ioc

import (
	"context"

	"github.com/ichaly/ideabase/std"
)

// newCache 源文件解析缓存，随应用停止释放
func newCache(l std.Lifecycle, c *std.Config) (*std.Cache, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cache, err := std.NewCache(ctx, "erd", c.Source.Cache)
	if err != nil {
		cancel()
		return nil, err
	}
	l.Append(nil, func(ctx context.Context) error {
		defer cancel()
		return cache.Clear(ctx)
	})
	return cache, nil
}

// 缓存模块
func init() {
	Add(Module("cache",
		Provide(newCache),
	))
}
