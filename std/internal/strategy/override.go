package strategy

import (
	"fmt"

	"github.com/ichaly/ideabase/log"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// OverrideLoadStrategy 键值覆盖加载策略，用于命令行参数等最高优先级来源
type OverrideLoadStrategy struct {
	values map[string]interface{}
	delim  string
}

// NewOverrideLoadStrategy 创建覆盖加载策略
func NewOverrideLoadStrategy(values map[string]interface{}, delim string) *OverrideLoadStrategy {
	return &OverrideLoadStrategy{
		values: values,
		delim:  delim,
	}
}

// Load 实现LoadStrategy接口
func (my *OverrideLoadStrategy) Load(k *koanf.Koanf) error {
	if len(my.values) == 0 {
		return nil
	}

	if err := k.Load(confmap.Provider(my.values, my.delim), nil); err != nil {
		return fmt.Errorf("加载覆盖值失败: %w", err)
	}

	log.Debug().Int("count", len(my.values)).Msg("覆盖值已加载")
	return nil
}

// GetName 返回策略名称
func (my *OverrideLoadStrategy) GetName() string {
	return "覆盖值"
}
