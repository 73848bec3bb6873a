package erd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/ichaly/ideabase/erd/metadata"
	"github.com/ichaly/ideabase/erd/protocol"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
	"github.com/samber/lo"
)

// Metadata 按优先级执行Loader并构建关系图
type Metadata struct {
	cfg     *std.Config
	loaders []metadata.Loader
}

// MetadataOption 用于自定义Loader注册与移除
type MetadataOption func(*metadataOptions)

type metadataOptions struct {
	loaders []metadata.Loader
}

// WithLoader 添加或替换Loader
func WithLoader(loader metadata.Loader) MetadataOption {
	return func(opts *metadataOptions) {
		if loader == nil {
			return
		}
		// 替换同名Loader
		for i, l := range opts.loaders {
			if l.Name() == loader.Name() {
				opts.loaders[i] = loader
				return
			}
		}
		opts.loaders = append(opts.loaders, loader)
	}
}

// WithoutLoader 移除指定名称的Loader
func WithoutLoader(names ...string) MetadataOption {
	return func(opts *metadataOptions) {
		opts.loaders = lo.Reject(opts.loaders, func(l metadata.Loader, _ int) bool {
			return lo.Contains(names, l.Name())
		})
	}
}

// WithSourceCache 为源文件Loader设置解析缓存
func WithSourceCache(c *std.Cache) MetadataOption {
	return func(opts *metadataOptions) {
		for _, l := range opts.loaders {
			if s, ok := l.(*metadata.SourceLoader); ok {
				metadata.WithCache(c)(s)
			}
		}
	}
}

// NewMetadata 根据输入路径与数据源注册默认Loader
func NewMetadata(cfg *std.Config, opts ...MetadataOption) (*Metadata, error) {
	sources, files, err := partition(cfg.Paths)
	if err != nil {
		return nil, err
	}

	options := &metadataOptions{loaders: []metadata.Loader{
		metadata.NewDatabaseLoader(cfg.Source.Dsn, cfg.Source.Camel),
		metadata.NewSourceLoader(sources, metadata.WithBases(cfg.Source.Bases...)),
		metadata.NewRegistryLoader(),
		metadata.NewFileLoader(files),
	}}
	for _, o := range opts {
		o(options)
	}

	// 优先级低的先加载，同名模型由后加载者覆盖
	loaders := options.loaders
	sort.SliceStable(loaders, func(i, j int) bool {
		return loaders[i].Priority() < loaders[j].Priority()
	})
	return &Metadata{cfg: cfg, loaders: loaders}, nil
}

// partition 按扩展名分派输入文件
func partition(paths []string) (sources, files []string, err error) {
	for _, p := range slice.Unique(paths) {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".go":
			sources = append(sources, p)
		case ".yml", ".yaml", ".json":
			files = append(files, p)
		default:
			return nil, nil, protocol.NewLoadError(p, errors.New("不支持的文件类型"))
		}
	}
	return sources, files, nil
}

// Loaders 返回排序后的Loader
func (my *Metadata) Loaders() []metadata.Loader {
	return my.loaders
}

// Load 执行全部Loader，每次调用都重新构建
func (my *Metadata) Load(ctx context.Context) (*Graph, error) {
	h := &hoster{}
	for _, l := range my.loaders {
		if !l.Support() {
			continue
		}
		if err := l.Load(ctx, h); err != nil {
			log.Debug().Err(err).Str("loader", l.Name()).Msg("加载器执行失败")
			if errors.Is(err, ErrLoad) || errors.Is(err, context.Canceled) {
				return nil, err
			}
			return nil, protocol.NewLoadError("", err)
		}
	}
	return my.build(h.classes)
}

// build 生成渲染上下文并校验关系
func (my *Metadata) build(classes []*protocol.Class) (*Graph, error) {
	g := &Graph{
		Models:    make([]Model, 0, len(classes)),
		Relations: []Relation{},
		FontSize:  my.cfg.Graph.FontSize,
	}
	known := lo.SliceToMap(classes, func(c *protocol.Class) (string, bool) {
		return c.Name, true
	})

	for _, c := range classes {
		m := Model{
			Name:      c.Name,
			Fields:    make([]Field, 0, len(c.Fields)),
			BgColor:   my.cfg.Graph.BgColor,
			MainColor: my.cfg.Graph.MainColor,
		}
		for _, f := range c.Fields {
			m.Fields = append(m.Fields, Field{Name: f.Name, Type: f.Type, Color: my.cfg.Graph.MainColor})
		}
		for _, r := range c.Relations() {
			if !known[r.Model] || !known[r.TargetModel] {
				if my.cfg.Strict {
					return nil, fmt.Errorf("%w: %s", ErrDangling, r.Key())
				}
				log.Warn().Str("relation", r.Key()).Msg("外键引用的模型不存在，已忽略")
				continue
			}
			g.Relations = append(g.Relations, r)
		}
		g.Models = append(g.Models, m)
	}

	g.Relations = lo.UniqBy(g.Relations, func(r Relation) string { return r.Key() })
	log.Debug().Int("models", len(g.Models)).Int("relations", len(g.Relations)).Msg("元数据构建完成")
	return g, nil
}

// hoster 保存一次加载的模型，同名后者覆盖并保留先出现的位置
type hoster struct {
	classes []*protocol.Class
}

func (my *hoster) PutClass(class *protocol.Class) error {
	if class == nil || class.Name == "" || metadata.IsHidden(class.Name) {
		return nil
	}
	for i, c := range my.classes {
		if c.Name == class.Name {
			log.Debug().Str("model", class.Name).Str("source", class.Source).Msg("同名模型已被覆盖")
			my.classes[i] = class
			return nil
		}
	}
	my.classes = append(my.classes, class)
	return nil
}

func (my *hoster) GetClass(name string) (*protocol.Class, bool) {
	return lo.Find(my.classes, func(c *protocol.Class) bool {
		return c.Name == name
	})
}
