package internal

import "time"

// GraphConfig 图形外观
type GraphConfig struct {
	MainColor string `mapstructure:"main-color" validate:"required" label:"main-color"`
	BgColor   string `mapstructure:"bg-color" validate:"required" label:"bg-color"`
	FontSize  int    `mapstructure:"font-size" validate:"gt=0" label:"font-size"`
}

// SourceConfig 模型来源
type SourceConfig struct {
	Bases []string      `mapstructure:"bases"`
	Camel bool          `mapstructure:"camel"`
	Dsn   string        `mapstructure:"dsn"`
	Cache time.Duration `mapstructure:"cache" validate:"gte=0" label:"source.cache"`
}

// EngineConfig 布局引擎
type EngineConfig struct {
	Command string        `mapstructure:"command" validate:"required" label:"engine.command"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0" label:"engine.timeout"`
}

// LiveConfig 实时预览
type LiveConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Open         bool          `mapstructure:"open"`
	Host         string        `mapstructure:"host" validate:"required" label:"live.host"`
	Port         int           `mapstructure:"port" validate:"gte=0,lte=65535" label:"live.port"`
	Debounce     time.Duration `mapstructure:"debounce" validate:"gte=0" label:"live.debounce"`
	Poll         time.Duration `mapstructure:"poll" validate:"gt=0" label:"live.poll"`
	CloseTimeout time.Duration `mapstructure:"close-timeout" validate:"gte=0" label:"live.close-timeout"`
}

// LogConfig 日志
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error" label:"log.level"`
	File  string `mapstructure:"file"`
}
