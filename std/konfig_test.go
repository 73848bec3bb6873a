package std

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKonfigDefaults(t *testing.T) {
	cfg, err := NewKonfig(WithEnvDir(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "#0b7285", cfg.GetString("graph.main-color"))
	assert.Equal(t, "#e3fafc", cfg.GetString("graph.bg-color"))
	assert.Equal(t, 12, cfg.GetInt("graph.font-size"))
	assert.Equal(t, "dot", cfg.GetString("engine.command"))
	assert.Equal(t, 100*time.Millisecond, cfg.GetDuration("live.debounce"))
	assert.True(t, cfg.GetBool("live.enabled"))
}

func TestNewKonfigLayers(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "erd.yml")
	testConfig := `
graph:
  main-color: "#111111"
  font-size: 14
live:
  port: 8080
`
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

	// 环境变量覆盖配置文件
	t.Setenv("ERD_LIVE_PORT", "9090")

	cfg, err := NewKonfig(
		WithFilePath(configPath),
		WithEnvDir(dir),
		WithOverrides(map[string]interface{}{"graph.font-size": 20}),
	)
	require.NoError(t, err)

	assert.Equal(t, "#111111", cfg.GetString("graph.main-color"))
	assert.Equal(t, "#e3fafc", cfg.GetString("graph.bg-color"))
	assert.Equal(t, 9090, cfg.GetInt("live.port"))
	// 覆盖值优先级最高
	assert.Equal(t, 20, cfg.GetInt("graph.font-size"))
	assert.Equal(t, configPath, cfg.FilePath())
}

func TestNewKonfigMissingFile(t *testing.T) {
	_, err := NewKonfig(WithFilePath(filepath.Join(t.TempDir(), "missing.yml")))
	assert.Error(t, err)
}

func TestKonfigUnmarshal(t *testing.T) {
	cfg, err := NewKonfig(WithEnvDir(t.TempDir()))
	require.NoError(t, err)

	v, err := NewValidator()
	require.NoError(t, err)
	c, err := NewConfig(cfg, v)
	require.NoError(t, err)

	assert.Equal(t, "#0b7285", c.Graph.MainColor)
	assert.Equal(t, 12, c.Graph.FontSize)
	assert.Equal(t, 30*time.Second, c.Engine.Timeout)
	assert.Equal(t, 5*time.Second, c.Live.CloseTimeout)
	assert.True(t, c.IsLive())
	assert.False(t, c.IsDebug())
}

func TestKonfigWatchConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "erd.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("graph:\n  font-size: 14\n"), 0644))

	cfg, err := NewKonfig(
		WithFilePath(configPath),
		WithEnvDir(dir),
		WithOverrides(map[string]interface{}{"graph.bg-color": "#000000"}),
	)
	require.NoError(t, err)

	var changed atomic.Int32
	cfg.OnConfigChange(func(k *koanf.Koanf) {
		changed.Add(1)
	})
	require.NoError(t, cfg.WatchConfig(50*time.Millisecond))
	defer cfg.StopWatch()

	// 重复启动是无害的
	require.NoError(t, cfg.WatchConfig(50*time.Millisecond))

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("graph:\n  font-size: 16\n"), 0644))

	assert.Eventually(t, func() bool { return changed.Load() > 0 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 16, cfg.GetInt("graph.font-size"))
	// 覆盖值在重新加载后依旧生效
	assert.Equal(t, "#000000", cfg.GetString("graph.bg-color"))
}

func TestKonfigWatchWithoutFile(t *testing.T) {
	cfg, err := NewKonfig(WithEnvDir(t.TempDir()))
	require.NoError(t, err)
	assert.Error(t, cfg.WatchConfig(0))
}

func TestIsTargetConfigFile(t *testing.T) {
	k := &Konfig{}
	assert.True(t, k.isTargetConfigFile("/etc/erd.yml", "/etc/erd.yml"))
	assert.True(t, k.isTargetConfigFile("/etc/erd-dev.yml", "/etc/erd.yml"))
	assert.False(t, k.isTargetConfigFile("/etc/other.yml", "/etc/erd.yml"))
	assert.False(t, k.isTargetConfigFile("/etc/erd-dev.json", "/etc/erd.yml"))
}
