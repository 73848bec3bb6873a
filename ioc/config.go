package ioc

import (
	"github.com/ichaly/ideabase/std"
)

// 配置模块，Konfig由调用方通过Supply提供
func init() {
	Add(Module("config",
		Provide(
			std.NewValidator,
			std.NewConfig,
		),
	))
}
