package std

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std/internal/strategy"
	"github.com/knadh/koanf/v2"
)

//go:embed assets/default.yml
var defaultConfig []byte

// Konfig 配置管理器，包装了koanf.Koanf，按策略顺序分层加载并支持配置文件监听
type Konfig struct {
	k         unsafe.Pointer       // 底层koanf实例，使用原子指针操作确保并发安全
	options   *konfigOptions       // 配置选项
	watcher   *Watcher             // 文件监视器
	callbacks []func(*koanf.Koanf) // 配置变更回调函数列表
	mu        sync.RWMutex
}

// KonfigOption 定义配置选项函数类型
type KonfigOption func(*konfigOptions)

type konfigOptions struct {
	envDir    string
	filePath  string
	overrides map[string]interface{}
}

const (
	// delim 配置项分隔符
	delim = "."
	// envPrefix 环境变量前缀
	envPrefix = "ERD"
)

// WithFilePath 设置配置文件路径
func WithFilePath(filePath string) KonfigOption {
	return func(options *konfigOptions) {
		options.filePath = filePath
	}
}

// WithEnvDir 设置.env文件所在目录
func WithEnvDir(dir string) KonfigOption {
	return func(options *konfigOptions) {
		options.envDir = dir
	}
}

// WithOverrides 设置最高优先级的覆盖值，通常来自命令行参数
func WithOverrides(values map[string]interface{}) KonfigOption {
	return func(options *konfigOptions) {
		if options.overrides == nil {
			options.overrides = make(map[string]interface{}, len(values))
		}
		for key, val := range values {
			options.overrides[key] = val
		}
	}
}

// NewKonfig 创建新的配置管理器
// 加载顺序: 内置配置 -> .env -> 配置文件 -> profile -> 环境变量 -> 覆盖值
func NewKonfig(opts ...KonfigOption) (*Konfig, error) {
	options := &konfigOptions{}
	for _, opt := range opts {
		opt(options)
	}

	k, err := loadKoanf(options)
	if err != nil {
		return nil, err
	}

	konfig := &Konfig{
		options:   options,
		callbacks: make([]func(*koanf.Koanf), 0),
	}
	atomic.StorePointer(&konfig.k, unsafe.Pointer(k))
	return konfig, nil
}

// loadKoanf 按策略顺序构建koanf实例
func loadKoanf(options *konfigOptions) (*koanf.Koanf, error) {
	k := koanf.New(delim)

	strategies := []strategy.LoadStrategy{
		strategy.NewEmbeddedLoadStrategy(defaultConfig),
		strategy.NewDotEnvLoadStrategy(options.envDir),
		strategy.NewFileLoadStrategy(options.filePath, ""),
		strategy.NewProfileLoadStrategy(options.filePath, ""),
		strategy.NewEnvLoadStrategy(envPrefix, delim),
		strategy.NewOverrideLoadStrategy(options.overrides, delim),
	}
	for _, s := range strategies {
		if err := s.Load(k); err != nil {
			return nil, fmt.Errorf("%s: %w", s.GetName(), err)
		}
	}
	return k, nil
}

// loadKoanf 安全获取当前koanf实例
func (my *Konfig) loadKoanf() *koanf.Koanf {
	return (*koanf.Koanf)(atomic.LoadPointer(&my.k))
}

// GetKoanf 获取底层koanf实例
func (my *Konfig) GetKoanf() *koanf.Koanf {
	return my.loadKoanf()
}

// FilePath 配置文件路径
func (my *Konfig) FilePath() string {
	return my.options.filePath
}

// Get 获取配置项
func (my *Konfig) Get(path string) interface{} {
	return my.loadKoanf().Get(path)
}

// Set 设置配置项
func (my *Konfig) Set(path string, value interface{}) {
	_ = my.loadKoanf().Set(path, value)
}

// IsSet 判断配置项是否存在
func (my *Konfig) IsSet(path string) bool {
	return my.loadKoanf().Exists(path)
}

// GetString 获取字符串配置
func (my *Konfig) GetString(path string) string {
	return my.loadKoanf().String(path)
}

// GetBool 获取布尔配置
func (my *Konfig) GetBool(path string) bool {
	return my.loadKoanf().Bool(path)
}

// GetInt 获取整数配置
func (my *Konfig) GetInt(path string) int {
	return my.loadKoanf().Int(path)
}

// GetDuration 获取时间间隔配置
func (my *Konfig) GetDuration(path string) time.Duration {
	return my.loadKoanf().Duration(path)
}

// GetStringSlice 获取字符串切片配置
func (my *Konfig) GetStringSlice(path string) []string {
	return my.loadKoanf().Strings(path)
}

// Unmarshal 将配置解析到结构体
func (my *Konfig) Unmarshal(val interface{}) error {
	return my.UnmarshalKey("", val)
}

// UnmarshalKey 将配置键解析到结构体
func (my *Konfig) UnmarshalKey(path string, val interface{}) error {
	err := my.loadKoanf().UnmarshalWithConf(path, val, koanf.UnmarshalConf{
		Tag: "mapstructure",
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("配置解析失败")
	}
	return err
}

// WatchConfig 启用配置文件变更监听，重新加载时保留覆盖值
func (my *Konfig) WatchConfig(debounce time.Duration) error {
	my.mu.Lock()
	defer my.mu.Unlock()

	if my.watcher != nil {
		log.Debug().Msg("配置监听已经启动，忽略重复调用")
		return nil
	}
	if my.options.filePath == "" {
		return fmt.Errorf("没有设置配置文件路径，无法启动监听")
	}

	w, err := NewWatcher(WithDebounceTime(debounce), WithMatcher(my.isTargetConfigFile))
	if err != nil {
		return err
	}
	if err := w.Add(my.options.filePath); err != nil {
		_ = w.Stop()
		return err
	}
	w.OnChange(func([]string) { my.reloadConfig() })
	if err := w.Start(); err != nil {
		return err
	}
	my.watcher = w
	return nil
}

// isTargetConfigFile 匹配主配置文件及其profile文件
func (my *Konfig) isTargetConfigFile(eventPath, configPath string) bool {
	if eventPath == configPath {
		return true
	}
	ext := filepath.Ext(configPath)
	base := strings.TrimSuffix(configPath, ext)
	return strings.HasPrefix(eventPath, base+"-") && strings.HasSuffix(eventPath, ext)
}

// reloadConfig 重新加载配置
func (my *Konfig) reloadConfig() {
	k, err := loadKoanf(my.options)
	if err != nil {
		log.Error().Err(err).Str("file", my.options.filePath).Msg("重新加载配置失败")
		return
	}

	log.Info().Str("file", my.options.filePath).Msg("配置已重新加载")
	atomic.StorePointer(&my.k, unsafe.Pointer(k))

	my.mu.RLock()
	callbacks := make([]func(*koanf.Koanf), len(my.callbacks))
	copy(callbacks, my.callbacks)
	my.mu.RUnlock()

	for _, callback := range callbacks {
		callback(k)
	}
}

// StopWatch 停止配置监听
func (my *Konfig) StopWatch() {
	my.mu.Lock()
	w := my.watcher
	my.watcher = nil
	my.mu.Unlock()
	if w != nil {
		_ = w.Stop()
		log.Info().Msg("已停止配置文件监听")
	}
}

// OnConfigChange 设置配置变更回调函数
func (my *Konfig) OnConfigChange(callback func(*koanf.Koanf)) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.callbacks = append(my.callbacks, callback)
}
