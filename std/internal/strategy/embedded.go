package strategy

import (
	"fmt"

	"github.com/ichaly/ideabase/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var yamlParser = yaml.Parser()

func errUnsupported(configType string) error {
	return fmt.Errorf("不支持的配置文件类型: %s", configType)
}

// EmbeddedLoadStrategy 内置默认配置加载策略，数据通常来自go:embed
type EmbeddedLoadStrategy struct {
	data []byte
}

// NewEmbeddedLoadStrategy 创建内置默认配置加载策略
func NewEmbeddedLoadStrategy(data []byte) *EmbeddedLoadStrategy {
	return &EmbeddedLoadStrategy{data: data}
}

// Load 实现LoadStrategy接口
func (my *EmbeddedLoadStrategy) Load(k *koanf.Koanf) error {
	if len(my.data) == 0 {
		return nil
	}
	if err := k.Load(rawbytes.Provider(my.data), yamlParser); err != nil {
		return fmt.Errorf("加载内置配置失败: %w", err)
	}
	log.Debug().Int("bytes", len(my.data)).Msg("内置配置已加载")
	return nil
}

// GetName 返回策略名称
func (my *EmbeddedLoadStrategy) GetName() string {
	return "内置配置"
}
