package ioc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ichaly/ideabase/live"
	"github.com/ichaly/ideabase/std"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func newKonfig(t *testing.T, overrides map[string]interface{}) *std.Konfig {
	t.Helper()
	k, err := std.NewKonfig(std.WithEnvDir(t.TempDir()), std.WithOverrides(overrides))
	require.NoError(t, err)
	return k
}

func TestContainerGraph(t *testing.T) {
	k := newKonfig(t, nil)
	require.NoError(t, fx.ValidateApp(Get(), Supply(k, Target("erd.svg")), fx.NopLogger))
}

func TestContainerStartFailsOnBadModels(t *testing.T) {
	dir := t.TempDir()
	models := filepath.Join(dir, "models.txt")
	require.NoError(t, os.WriteFile(models, []byte("x"), 0644))

	k := newKonfig(t, map[string]interface{}{"paths": []string{models}})
	app := New(false, Supply(k, Target(filepath.Join(dir, "erd.svg"))))
	assert.Error(t, app.Err())
}

func TestContainerPopulate(t *testing.T) {
	dir := t.TempDir()
	models := filepath.Join(dir, "models.yml")
	require.NoError(t, os.WriteFile(models, []byte("models: []\n"), 0644))

	k := newKonfig(t, map[string]interface{}{
		"paths":     []string{models},
		"live.open": false,
	})
	var view *live.View
	var server *std.Server
	app := New(false, Supply(k, Target(filepath.Join(dir, "erd.svg"))), fx.Populate(&view, &server))
	require.NoError(t, app.Err())
	assert.Equal(t, filepath.Join(dir, "erd.svg"), view.Output())
	assert.Empty(t, server.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.Stop(ctx)
}
