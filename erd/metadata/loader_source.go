package metadata

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"os"
	"runtime"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/ichaly/ideabase/erd/protocol"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
	"github.com/ichaly/ideabase/utl"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/schema"
)

// GormModel gorm内置的基础模型
const GormModel = "gorm.io/gorm.Model"

// gorm.Model 展开后的字段
var gormModelColumns = []column{
	{goName: "ID", name: "id", typ: "uint", primary: true},
	{goName: "CreatedAt", name: "created_at", typ: "time.Time"},
	{goName: "UpdatedAt", name: "updated_at", typ: "time.Time"},
	{goName: "DeletedAt", name: "deleted_at", typ: "gorm.DeletedAt"},
}

type column struct {
	goName  string
	name    string
	typ     string
	primary bool
}

type association struct {
	goName     string
	target     string
	slice      bool
	foreignKey string
	references string
}

// SourceLoader Go源文件模型加载器
// 通过语法树识别嵌入了基础模型的结构体
type SourceLoader struct {
	paths  []string
	bases  []string
	cache  *std.Cache
	naming schema.Namer
}

// SourceOption 源文件加载器选项
type SourceOption func(*SourceLoader)

// WithBases 追加基础模型，支持 importpath.Type 或本地类型名
func WithBases(bases ...string) SourceOption {
	return func(l *SourceLoader) {
		bases = slice.Map(bases, func(_ int, b string) string { return strings.TrimSpace(b) })
		l.bases = slice.Unique(slice.Compact(append(l.bases, bases...)))
	}
}

// WithCache 设置解析结果缓存
func WithCache(c *std.Cache) SourceOption {
	return func(l *SourceLoader) {
		l.cache = c
	}
}

// NewSourceLoader 创建源文件加载器
func NewSourceLoader(paths []string, opts ...SourceOption) *SourceLoader {
	l := &SourceLoader{
		paths:  paths,
		bases:  []string{GormModel},
		naming: schema.NamingStrategy{},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (my *SourceLoader) Name() string  { return LoaderSource }
func (my *SourceLoader) Priority() int { return 70 }
func (my *SourceLoader) Support() bool { return len(my.paths) > 0 }

// Load 解析全部源文件后统一识别模型
func (my *SourceLoader) Load(ctx context.Context, h Hoster) error {
	files, err := my.parseAll(ctx)
	if err != nil {
		return err
	}

	classes := newSourceResolver(my.bases, my.naming).resolve(files)
	for _, c := range classes {
		if err := h.PutClass(c); err != nil {
			return fmt.Errorf("注入Hoster失败: %w", err)
		}
	}
	counts := lo.CountValuesBy(classes, func(c *protocol.Class) string { return c.Source })
	for _, p := range my.paths {
		if counts[p] == 0 {
			log.Info().Str("file", p).Strs("bases", my.bases).Msg("文件中没有嵌入基础模型的结构体，自定义基础模型可通过 --base 指定")
		}
	}
	log.Debug().Int("files", len(files)).Int("classes", len(classes)).Msg("源文件模型加载完成")
	return nil
}

// parseAll 并发解析，结果保持输入顺序
func (my *SourceLoader) parseAll(ctx context.Context) ([]*fileDecl, error) {
	files := make([]*fileDecl, len(my.paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range my.paths {
		g.Go(func() error {
			decl, err := my.parseFile(ctx, p)
			if err != nil {
				return protocol.NewLoadError(p, err)
			}
			files[i] = decl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (my *SourceLoader) parseFile(ctx context.Context, path string) (*fileDecl, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	var key string
	if my.cache != nil {
		key = my.cache.Key(path, utl.Md5File(bytes.NewReader(src)))
		decl := &fileDecl{}
		if my.cache.Get(ctx, key, decl) {
			log.Trace().Str("file", path).Msg("命中解析缓存")
			return decl, nil
		}
	}

	decl, err := parseSource(path, src)
	if err != nil {
		return nil, fmt.Errorf("解析源文件失败: %w", err)
	}
	if my.cache != nil {
		if err := my.cache.Set(ctx, key, decl); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("写入解析缓存失败")
		}
	}
	return decl, nil
}

// sourceResolver 根据嵌入关系识别模型并计算字段与关系
type sourceResolver struct {
	qualified []string
	bare      map[string]bool
	naming    schema.Namer
	structs   map[string]structDecl
	sources   map[string]string
	order     []string
	models    map[string]bool
	columns   map[string][]column
}

func newSourceResolver(bases []string, naming schema.Namer) *sourceResolver {
	r := &sourceResolver{
		bare:    make(map[string]bool),
		naming:  naming,
		structs: make(map[string]structDecl),
		sources: make(map[string]string),
		models:  make(map[string]bool),
		columns: make(map[string][]column),
	}
	for _, b := range bases {
		if strings.Contains(b, ".") {
			r.qualified = append(r.qualified, b)
		} else {
			r.bare[b] = true
		}
	}
	return r
}

func (my *sourceResolver) resolve(files []*fileDecl) []*protocol.Class {
	// 同名结构体后出现的覆盖先出现的，位置保持不变
	for _, f := range files {
		for _, s := range f.Structs {
			if _, ok := my.structs[s.Name]; !ok {
				my.order = append(my.order, s.Name)
			}
			my.structs[s.Name] = s
			my.sources[s.Name] = f.Path
		}
	}

	for _, name := range my.order {
		if !IsHidden(name) && my.isModel(name, map[string]bool{}) {
			my.models[name] = true
		}
	}

	var classes []*protocol.Class
	index := make(map[string]*protocol.Class)
	assocs := make(map[string][]association)
	for _, name := range my.order {
		if !my.models[name] {
			continue
		}
		cols, as := my.expand(name, "", map[string]bool{})
		class := &protocol.Class{Name: name, Source: my.sources[name]}
		for _, c := range cols {
			class.AddField(&protocol.Field{Name: c.name, Type: c.typ})
		}
		my.columns[name] = cols
		assocs[name] = as
		classes = append(classes, class)
		index[name] = class
	}

	for _, class := range classes {
		for _, a := range assocs[class.Name] {
			rel, ok := my.relate(class.Name, a)
			if !ok {
				log.Debug().Str("model", class.Name).Str("field", a.goName).Msg("无法确定关联外键，已忽略")
				continue
			}
			owner := index[rel.Model]
			if f, ok := owner.GetField(rel.Field); ok && f.Relation == nil {
				r := rel
				f.Relation = &r
			}
		}
	}
	return classes
}

// isModel 直接或间接嵌入了基础模型，且自身不是基础模型
func (my *sourceResolver) isModel(name string, seen map[string]bool) bool {
	if my.bare[name] || seen[name] {
		return false
	}
	s, ok := my.structs[name]
	if !ok {
		return false
	}
	seen[name] = true
	for _, f := range s.Fields {
		if !f.Embedded {
			continue
		}
		if my.isBase(f.Ref) {
			return true
		}
		if _, local := my.structs[f.Ref]; local && my.isModel(f.Ref, seen) {
			return true
		}
	}
	return false
}

func (my *sourceResolver) isBase(ref string) bool {
	if my.bare[ref] {
		return true
	}
	for _, q := range my.qualified {
		if ref == q || strings.HasSuffix(ref, "/"+q) {
			return true
		}
	}
	return false
}

// expand 展开字段，嵌入结构体的字段出现在嵌入位置
func (my *sourceResolver) expand(name, prefix string, seen map[string]bool) ([]column, []association) {
	if seen[name] {
		return nil, nil
	}
	seen[name] = true
	defer delete(seen, name)

	var (
		cols   []column
		assocs []association
	)
	for _, f := range my.structs[name].Fields {
		settings := schema.ParseTagSetting(f.Tag, ";")
		if _, ignored := settings["-"]; ignored {
			continue
		}
		_, local := my.structs[f.Ref]

		if f.Embedded {
			switch {
			case f.Ref == GormModel:
				cols = append(cols, gormModelColumns...)
			case local:
				c, a := my.expand(f.Ref, prefix+settings["EMBEDDEDPREFIX"], seen)
				cols, assocs = append(cols, c...), append(assocs, a...)
			}
			continue
		}
		if !token.IsExported(f.Name) {
			continue
		}
		if my.models[f.Ref] {
			if _, m2m := settings["MANY2MANY"]; !m2m {
				assocs = append(assocs, association{
					goName:     f.Name,
					target:     f.Ref,
					slice:      f.Slice,
					foreignKey: settings["FOREIGNKEY"],
					references: settings["REFERENCES"],
				})
			}
			continue
		}
		if _, embedded := settings["EMBEDDED"]; embedded && local {
			c, a := my.expand(f.Ref, prefix+settings["EMBEDDEDPREFIX"], seen)
			cols, assocs = append(cols, c...), append(assocs, a...)
			continue
		}

		col := column{goName: f.Name, typ: f.Type, primary: f.Name == "ID"}
		if _, ok := settings["PRIMARYKEY"]; ok {
			col.primary = true
		}
		if _, ok := settings["PRIMARY_KEY"]; ok {
			col.primary = true
		}
		if col.name = settings["COLUMN"]; col.name == "" {
			col.name = prefix + my.naming.ColumnName("", f.Name)
		}
		cols = append(cols, col)
	}
	return cols, assocs
}

// relate 计算关联对应的外键关系，规则与gorm一致
// belongs-to: 外键在当前模型，默认为 字段名+目标主键名
// has-one/has-many: 外键在目标模型，默认为 当前模型名+当前主键名
func (my *sourceResolver) relate(model string, a association) (protocol.Relation, bool) {
	if !a.slice {
		fk := a.foreignKey
		if fk == "" {
			fk = a.goName + lo.Ternary(a.references != "", a.references, my.primaryGoName(a.target))
		}
		if c, ok := my.findColumn(model, fk); ok {
			return protocol.Relation{
				Model:       model,
				TargetModel: a.target,
				Field:       c.name,
				TargetField: my.referenced(a.target, a.references),
			}, true
		}
	}

	fk := a.foreignKey
	if fk == "" {
		fk = model + lo.Ternary(a.references != "", a.references, my.primaryGoName(model))
	}
	if c, ok := my.findColumn(a.target, fk); ok {
		return protocol.Relation{
			Model:       a.target,
			TargetModel: model,
			Field:       c.name,
			TargetField: my.referenced(model, a.references),
		}, true
	}
	return protocol.Relation{}, false
}

// findColumn 按Go字段名或列名查找
func (my *sourceResolver) findColumn(model, name string) (column, bool) {
	cols := my.columns[model]
	if c, ok := lo.Find(cols, func(c column) bool { return c.goName == name }); ok {
		return c, true
	}
	return lo.Find(cols, func(c column) bool { return c.name == name })
}

func (my *sourceResolver) primaryGoName(model string) string {
	if c, ok := lo.Find(my.columns[model], func(c column) bool { return c.primary }); ok {
		return c.goName
	}
	return "ID"
}

// referenced 被引用字段的列名，默认主键
func (my *sourceResolver) referenced(model, references string) string {
	if references != "" {
		if c, ok := my.findColumn(model, references); ok {
			return c.name
		}
		return my.naming.ColumnName("", references)
	}
	if c, ok := lo.Find(my.columns[model], func(c column) bool { return c.primary }); ok {
		return c.name
	}
	return "id"
}
