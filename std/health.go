package std

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Health struct {
	start time.Time
}

func NewHealth() *Health {
	return &Health{start: time.Now()}
}

func (my *Health) Path() string {
	return "/health"
}

func (my *Health) Bind(r fiber.Router) {
	r.Get("/", my.Check)
}

// Check 存活检查，附带版本信息
func (my *Health) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"commit":  GitCommit,
		"uptime":  time.Since(my.start).Round(time.Second).String(),
	})
}
