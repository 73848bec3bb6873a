package std

import (
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/utl"
)

// NewFiber 创建预览服务使用的fiber应用
func NewFiber(c *Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "erd",
		DisableStartupMessage: true,
		JSONEncoder:           utl.Marshal,
		JSONDecoder:           utl.Unmarshal,
	})

	app.Use(recover.New())

	// 请求日志，页面轮询频繁，正常请求只在调试级别输出
	level := log.DebugLevel
	if c.IsDebug() {
		level = log.InfoLevel
	}
	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: log.Default().Zerolog(),
		Levels: []log.Level{log.ErrorLevel, log.WarnLevel, level},
		Fields: []string{fiberzerolog.FieldMethod, fiberzerolog.FieldURL, fiberzerolog.FieldStatus, fiberzerolog.FieldLatency},
	}))
	return app
}
