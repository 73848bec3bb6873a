package erd

import (
	"context"

	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
)

// Drawer 串联加载、渲染与导出
type Drawer struct {
	meta     *Metadata
	renderer *Renderer
	exporter *Exporter
}

// NewDrawer 创建绘制流程
func NewDrawer(meta *Metadata, renderer *Renderer, exporter *Exporter) *Drawer {
	return &Drawer{meta: meta, renderer: renderer, exporter: exporter}
}

// NewDrawerFromConfig 使用默认组件创建绘制流程
func NewDrawerFromConfig(cfg *std.Config, opts ...MetadataOption) (*Drawer, error) {
	meta, err := NewMetadata(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewDrawer(meta, NewRenderer(), NewExporter(cfg)), nil
}

// Draw 完整执行一次绘制
func (my *Drawer) Draw(ctx context.Context, output string, view, cleanup bool) error {
	g, err := my.meta.Load(ctx)
	if err != nil {
		return err
	}
	dot, err := my.renderer.Render(g)
	if err != nil {
		return err
	}
	if err := my.exporter.Export(ctx, dot, output, view, cleanup); err != nil {
		return err
	}
	log.Info().Str("output", output).Int("models", len(g.Models)).Int("relations", len(g.Relations)).Msg("关系图已生成")
	return nil
}
