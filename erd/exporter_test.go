package erd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine 用脚本模拟布局引擎，输出 "<格式> <源文件内容>"
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("需要sh")
	}
	p := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return p
}

func TestExportFormat(t *testing.T) {
	assert.Equal(t, "svg", Format("out/erd.svg"))
	assert.Equal(t, "png", Format("erd.PNG"))
	assert.Equal(t, "", Format("erd"))
	assert.Equal(t, filepath.Join("out", "erd.gv"), Source(filepath.Join("out", "erd.svg")))
	assert.Equal(t, filepath.Join("out", "erd"), Source(filepath.Join("out", "erd.GV")))
}

func TestExportGvOutput(t *testing.T) {
	engine := fakeEngine(t, `cat "$2"`)
	e := NewExporter(newConfig(), WithCommand(engine))

	output := filepath.Join(t.TempDir(), "erd.gv")
	require.NoError(t, e.Export(context.Background(), []byte("digraph {}"), output, false, true))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "digraph {}", string(data))
	assert.NoFileExists(t, Source(output))
}

func TestExport(t *testing.T) {
	engine := fakeEngine(t, `echo "$1"; cat "$2"`)
	var opened string
	e := NewExporter(newConfig(), WithCommand(engine), WithOpener(func(p string) error {
		opened = p
		return nil
	}))

	output := filepath.Join(t.TempDir(), "img", "erd.png")
	require.NoError(t, e.Export(context.Background(), []byte("digraph {}"), output, true, false))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "-Tpng\ndigraph {}", string(data))
	assert.FileExists(t, Source(output))
	assert.Equal(t, output, opened)

	// 只换扩展名，内容只有格式不同
	other := filepath.Join(filepath.Dir(output), "erd.svg")
	require.NoError(t, e.Export(context.Background(), []byte("digraph {}"), other, false, true))
	data, err = os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "-Tsvg\ndigraph {}", string(data))
	assert.NoFileExists(t, Source(other))
}

func TestExportFailure(t *testing.T) {
	engine := fakeEngine(t, `echo "syntax error in line 1" >&2; exit 3`)
	e := NewExporter(newConfig(), WithCommand(engine))

	output := filepath.Join(t.TempDir(), "erd.svg")
	err := e.Export(context.Background(), []byte("digraph {"), output, false, true)
	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "syntax error in line 1", ee.Stderr)
	assert.NoFileExists(t, output)

	err = e.Export(context.Background(), []byte("digraph {}"), filepath.Join(t.TempDir(), "erd"), false, true)
	assert.True(t, errors.As(err, &ee))
}

func TestExportTimeout(t *testing.T) {
	engine := fakeEngine(t, `exec sleep 5`)
	e := NewExporter(newConfig(), WithCommand(engine), WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := e.Export(context.Background(), []byte("digraph {}"), filepath.Join(t.TempDir(), "erd.svg"), false, true)
	var ee *ExportError
	assert.True(t, errors.As(err, &ee))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExportWithGraphviz(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("未安装graphviz")
	}
	dot, err := NewRenderer().Render(sampleGraph())
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "erd.svg")
	require.NoError(t, NewExporter(newConfig()).Export(context.Background(), dot, output, false, true))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.NoFileExists(t, Source(output))
}
