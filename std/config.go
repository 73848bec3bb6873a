package std

import (
	"github.com/ichaly/ideabase/std/internal"
)

// Config 表示运行配置
type Config struct {
	Mode   string                `mapstructure:"mode"`
	Strict bool                  `mapstructure:"strict"`
	Output string                `mapstructure:"output"`
	Paths  []string              `mapstructure:"paths"`
	Graph  internal.GraphConfig  `mapstructure:"graph"`
	Source internal.SourceConfig `mapstructure:"source"`
	Engine internal.EngineConfig `mapstructure:"engine"`
	Live   internal.LiveConfig   `mapstructure:"live"`
	Log    internal.LogConfig    `mapstructure:"log"`
}

// NewConfig 从配置管理器解析并校验配置
func NewConfig(k *Konfig, v *Validator) (*Config, error) {
	c := &Config{}
	if err := k.Unmarshal(c); err != nil {
		return nil, err
	}
	if err := v.Check(c); err != nil {
		return nil, err
	}
	return c, nil
}

// IsDebug 判断是否为开发模式
func (my *Config) IsDebug() bool {
	return my.Mode == "development" || my.Mode == "dev"
}

// IsLive 是否进入实时预览
func (my *Config) IsLive() bool {
	return my.Output == "" && my.Live.Enabled
}
