package metadata

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/ichaly/ideabase/erd/protocol"
	"github.com/ichaly/ideabase/log"
	"gorm.io/gorm/schema"
)

var (
	registry   []interface{}
	registryMu sync.RWMutex
)

// Register 注册运行时模型，供RegistryLoader通过gorm解析
func Register(models ...interface{}) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, models...)
}

// Registered 已注册的模型
func Registered() []interface{} {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]interface{}{}, registry...)
}

// RegistryLoader 注册模型加载器，字段和关系来自 gorm 的 schema.Parse
type RegistryLoader struct {
	models []interface{}
	naming schema.Namer
}

// NewRegistryLoader 创建注册模型加载器，未指定模型时使用全局注册表
func NewRegistryLoader(models ...interface{}) *RegistryLoader {
	if len(models) == 0 {
		models = Registered()
	}
	return &RegistryLoader{models: models, naming: schema.NamingStrategy{}}
}

func (my *RegistryLoader) Name() string  { return LoaderRegistry }
func (my *RegistryLoader) Priority() int { return 75 }
func (my *RegistryLoader) Support() bool { return len(my.models) > 0 }

// Load 解析注册的模型
func (my *RegistryLoader) Load(ctx context.Context, h Hoster) error {
	cache := &sync.Map{}
	index := make(map[string]*protocol.Class)
	var (
		classes []*protocol.Class
		parsed  []*schema.Schema
	)
	for _, m := range my.models {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := schema.Parse(m, cache, my.naming)
		if err != nil {
			return protocol.NewLoadError(reflect.TypeOf(m).String(), fmt.Errorf("解析模型失败: %w", err))
		}
		if IsHidden(s.Name) {
			continue
		}
		class := &protocol.Class{Name: s.Name, Source: s.ModelType.PkgPath()}
		for _, f := range s.Fields {
			if f.DBName == "" {
				continue
			}
			class.AddField(&protocol.Field{Name: f.DBName, Type: f.FieldType.String()})
		}
		classes = append(classes, class)
		parsed = append(parsed, s)
		index[s.Name] = class
	}

	for _, s := range parsed {
		for _, rel := range relationships(s) {
			for _, ref := range rel.References {
				if ref.PrimaryKey == nil || ref.ForeignKey == nil {
					continue
				}
				owner, ok := index[ref.ForeignKey.Schema.Name]
				if !ok {
					log.Debug().Str("model", ref.ForeignKey.Schema.Name).Msg("外键所在模型未注册，已忽略")
					continue
				}
				f, ok := owner.GetField(ref.ForeignKey.DBName)
				if !ok || f.Relation != nil {
					continue
				}
				f.Relation = &protocol.Relation{
					Model:       ref.ForeignKey.Schema.Name,
					TargetModel: ref.PrimaryKey.Schema.Name,
					Field:       ref.ForeignKey.DBName,
					TargetField: ref.PrimaryKey.DBName,
				}
			}
		}
	}

	for _, c := range classes {
		if err := h.PutClass(c); err != nil {
			return fmt.Errorf("注入Hoster失败: %w", err)
		}
	}
	return nil
}

// relationships 按belongs-to、has-one、has-many的顺序返回关联
func relationships(s *schema.Schema) []*schema.Relationship {
	var list []*schema.Relationship
	list = append(list, s.Relationships.BelongsTo...)
	list = append(list, s.Relationships.HasOne...)
	list = append(list, s.Relationships.HasMany...)
	return list
}
