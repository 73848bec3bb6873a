package strategy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ichaly/ideabase/log"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/v2"
)

// DotEnvLoadStrategy .env文件加载策略
type DotEnvLoadStrategy struct {
	dir string
}

// NewDotEnvLoadStrategy 创建.env文件加载策略，dir为空时使用当前工作目录
func NewDotEnvLoadStrategy(dir string) *DotEnvLoadStrategy {
	return &DotEnvLoadStrategy{dir: dir}
}

// Load 实现LoadStrategy接口，加载.env文件
func (my *DotEnvLoadStrategy) Load(_ *koanf.Koanf) error {
	envFile := filepath.Join(my.dir, ".env")

	// 检查文件是否存在
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}

	// godotenv不会覆盖已存在的环境变量
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("加载.env文件失败: %w", err)
	}

	log.Debug().Str("file", envFile).Msg(".env文件已加载")
	return nil
}

// GetName 返回策略名称
func (my *DotEnvLoadStrategy) GetName() string {
	return ".env文件"
}
