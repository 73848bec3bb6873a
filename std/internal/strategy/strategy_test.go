package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedAndOverride(t *testing.T) {
	k := koanf.New(".")
	require.NoError(t, NewEmbeddedLoadStrategy([]byte("graph:\n  font-size: 12\n  main-color: \"#0b7285\"\n")).Load(k))
	assert.Equal(t, 12, k.Int("graph.font-size"))

	require.NoError(t, NewOverrideLoadStrategy(map[string]interface{}{"graph.font-size": 20}, ".").Load(k))
	assert.Equal(t, 20, k.Int("graph.font-size"))
	assert.Equal(t, "#0b7285", k.String("graph.main-color"))
}

func TestFileAndProfile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "erd.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: dev\nprofiles:\n  active: print\nlive:\n  port: 1000\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "erd-print.yml"), []byte("graph:\n  font-size: 18\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "erd-dev.yml"), []byte("live:\n  port: 2000\n"), 0644))

	k := koanf.New(".")
	require.NoError(t, NewFileLoadStrategy(configFile, "").Load(k))
	assert.Equal(t, []string{"print", "dev"}, ActiveProfiles(k))

	require.NoError(t, NewProfileLoadStrategy(configFile, "").Load(k))
	assert.Equal(t, 18, k.Int("graph.font-size"))
	assert.Equal(t, 2000, k.Int("live.port"))
}

func TestFileUnsupportedType(t *testing.T) {
	k := koanf.New(".")
	err := NewFileLoadStrategy("erd.toml", "").Load(k)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "live.close-timeout", EnvKey("ERD_", ".", "ERD_LIVE_CLOSE__TIMEOUT"))
	assert.Equal(t, "graph.font-size", EnvKey("ERD_", ".", "ERD_GRAPH_FONT__SIZE"))
	assert.Equal(t, "strict", EnvKey("ERD_", ".", "ERD_STRICT"))
}

func TestEnvLoad(t *testing.T) {
	t.Setenv("ERD_LIVE_PORT", "9999")
	k := koanf.New(".")
	require.NoError(t, NewEnvLoadStrategy("ERD", ".").Load(k))
	assert.Equal(t, 9999, k.Int("live.port"))
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ERD_DOTENV_PROBE=loaded\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("ERD_DOTENV_PROBE") })

	require.NoError(t, NewDotEnvLoadStrategy(dir).Load(koanf.New(".")))
	assert.Equal(t, "loaded", os.Getenv("ERD_DOTENV_PROBE"))

	// 不存在时跳过
	assert.NoError(t, NewDotEnvLoadStrategy(filepath.Join(dir, "missing")).Load(koanf.New(".")))
}
