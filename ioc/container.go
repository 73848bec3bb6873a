package ioc

import (
	"context"

	"github.com/ichaly/ideabase/std"
	"go.uber.org/fx"
)

var options []Option

func Add(args ...Option) {
	options = append(options, args...)
}

func Get() Option {
	return Options(options...)
}

// New 创建应用，非verbose模式下屏蔽fx自身的日志
func New(verbose bool, extra ...Option) *fx.App {
	opts := append([]Option{Get()}, extra...)
	if !verbose {
		opts = append(opts, fx.NopLogger)
	}
	return fx.New(opts...)
}

// lifecycle 把fx的生命周期转换为std.Lifecycle
type lifecycle struct {
	fx fx.Lifecycle
}

func newLifecycle(l fx.Lifecycle) std.Lifecycle {
	return &lifecycle{fx: l}
}

func (my *lifecycle) Append(start, stop func(context.Context) error) {
	my.fx.Append(fx.Hook{OnStart: start, OnStop: stop})
}

func init() {
	Add(Module("server",
		Provide(
			newLifecycle,
			std.NewFiber,
			std.NewServer,
			Annotate(
				std.NewHealth,
				As(new(std.Plugin)),
				ResultTags(`group:"plugin"`),
			),
		),
	))
}
