package strategy

import (
	"fmt"
	"strings"

	"github.com/ichaly/ideabase/log"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvLoadStrategy 环境变量加载策略
type EnvLoadStrategy struct {
	envPrefix string
	delim     string
}

// NewEnvLoadStrategy 创建环境变量加载策略
func NewEnvLoadStrategy(envPrefix, delim string) *EnvLoadStrategy {
	return &EnvLoadStrategy{
		envPrefix: envPrefix,
		delim:     delim,
	}
}

// EnvKey 将环境变量名转换为配置键，双下划线表示连字符
// 例如 ERD_LIVE_CLOSE__TIMEOUT -> live.close-timeout
func EnvKey(prefix, delim, envKey string) string {
	key := strings.ToLower(strings.TrimPrefix(envKey, prefix))
	key = strings.ReplaceAll(key, "__", "-")
	return strings.ReplaceAll(key, "_", delim)
}

// Load 实现LoadStrategy接口，从环境变量加载配置
func (my *EnvLoadStrategy) Load(k *koanf.Koanf) error {
	prefix := my.envPrefix + "_"
	envProvider := env.Provider(prefix, my.delim, func(envKey string) string {
		return EnvKey(prefix, my.delim, envKey)
	})

	if err := k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("加载环境变量失败: %w", err)
	}

	log.Debug().Str("prefix", my.envPrefix).Msg("环境变量已加载")
	return nil
}

// GetName 返回策略名称
func (my *EnvLoadStrategy) GetName() string {
	return "环境变量"
}
