package strategy

import (
	"github.com/knadh/koanf/v2"
)

// LoadStrategy 定义配置加载策略接口
type LoadStrategy interface {
	// Load 加载配置到koanf实例
	Load(k *koanf.Koanf) error
	// GetName 获取策略名称，用于日志
	GetName() string
}

// parserFor 根据配置类型选择解析器
func parserFor(configType string) (koanf.Parser, error) {
	switch configType {
	case "yaml", "yml":
		return yamlParser, nil
	default:
		return nil, errUnsupported(configType)
	}
}
