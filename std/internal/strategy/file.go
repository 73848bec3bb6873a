package strategy

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ichaly/ideabase/log"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileLoadStrategy 文件加载策略
type FileLoadStrategy struct {
	configFile string
	configType string
}

// NewFileLoadStrategy 创建文件加载策略
func NewFileLoadStrategy(configFile, configType string) *FileLoadStrategy {
	// 如果未指定配置类型，则从文件扩展名推断
	if configType == "" && configFile != "" {
		configType = strings.TrimPrefix(filepath.Ext(configFile), ".")
	}
	return &FileLoadStrategy{
		configFile: configFile,
		configType: configType,
	}
}

// Load 实现LoadStrategy接口，从文件加载配置
func (my *FileLoadStrategy) Load(k *koanf.Koanf) error {
	if my.configFile == "" {
		return nil
	}

	parser, err := parserFor(my.configType)
	if err != nil {
		return err
	}

	if err := k.Load(file.Provider(my.configFile), parser); err != nil {
		return fmt.Errorf("加载配置文件失败: %w", err)
	}

	log.Info().Str("file", my.configFile).Msg("配置文件已加载")
	return nil
}

// GetName 返回策略名称
func (my *FileLoadStrategy) GetName() string {
	return "配置文件"
}
