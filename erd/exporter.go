package erd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
	"github.com/ichaly/ideabase/utl"
	"github.com/pkg/browser"
)

// Exporter 调用布局引擎生成图片
type Exporter struct {
	command string
	timeout time.Duration
	open    func(string) error
}

// ExportOption 导出器选项
type ExportOption func(*Exporter)

// WithCommand 设置布局引擎命令
func WithCommand(command string) ExportOption {
	return func(e *Exporter) {
		if command != "" {
			e.command = command
		}
	}
}

// WithTimeout 设置单次导出超时，0表示不限制
func WithTimeout(timeout time.Duration) ExportOption {
	return func(e *Exporter) {
		e.timeout = timeout
	}
}

// WithOpener 设置查看图片的方式
func WithOpener(open func(string) error) ExportOption {
	return func(e *Exporter) {
		if open != nil {
			e.open = open
		}
	}
}

// NewExporter 创建导出器
func NewExporter(cfg *std.Config, opts ...ExportOption) *Exporter {
	e := &Exporter{command: "dot", open: browser.OpenFile}
	if cfg != nil {
		WithCommand(cfg.Engine.Command)(e)
		e.timeout = cfg.Engine.Timeout
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Format 输出路径的扩展名即导出格式
func Format(output string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
}

// Source DOT源文件路径，输出本身是gv时去掉扩展名避免覆盖
func Source(output string) string {
	if Format(output) == "gv" {
		return utl.TrimExt(output)
	}
	return utl.TrimExt(output) + ".gv"
}

// Export 写出DOT源文件并调用引擎，图片通过重命名替换
func (my *Exporter) Export(ctx context.Context, dot []byte, output string, view, cleanup bool) error {
	format := Format(output)
	if format == "" {
		return &ExportError{Command: my.command, Err: errors.New("输出路径缺少扩展名")}
	}
	source := Source(output)
	if err := utl.WriteBytes(dot, source); err != nil {
		return &ExportError{Command: my.command, Err: err}
	}
	if cleanup {
		defer func() { _ = os.Remove(source) }()
	}

	if my.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, my.timeout)
		defer cancel()
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, my.command, "-T"+format, source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ExportError{Command: cmd.String(), Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	if err := utl.ReplaceFile(&stdout, output); err != nil {
		return &ExportError{Command: cmd.String(), Err: err}
	}
	log.Debug().Str("output", output).Str("format", format).Msg("图片导出完成")

	if view {
		if err := my.open(output); err != nil {
			log.Warn().Err(err).Str("output", output).Msg("打开图片失败")
		}
	}
	return nil
}
