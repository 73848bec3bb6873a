package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ichaly/ideabase/erd/protocol"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/utl"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ForeignKeyType 声明文件中引用字段未写类型时使用的类型名
const ForeignKeyType = "ForeignKey"

// modelFile 模型描述文件结构
type modelFile struct {
	Models []modelEntry `json:"models" yaml:"models"`
}

type modelEntry struct {
	Name     string       `json:"name" yaml:"name"`
	Extends  string       `json:"extends,omitempty" yaml:"extends,omitempty"`
	Abstract bool         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Fields   []fieldEntry `json:"fields" yaml:"fields"`
}

type fieldEntry struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	References string `json:"references,omitempty" yaml:"references,omitempty"` // Model 或 Model.field
}

// FileLoader 声明式模型文件加载器，支持yaml与json
type FileLoader struct {
	paths []string
}

// NewFileLoader 创建文件加载器
func NewFileLoader(paths []string) *FileLoader {
	return &FileLoader{paths: paths}
}

func (my *FileLoader) Name() string  { return LoaderFile }
func (my *FileLoader) Priority() int { return 80 }
func (my *FileLoader) Support() bool { return len(my.paths) > 0 }

// Load 按输入顺序加载模型文件
func (my *FileLoader) Load(ctx context.Context, h Hoster) error {
	for _, p := range my.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := my.loadFile(p, h); err != nil {
			return protocol.NewLoadError(p, err)
		}
	}
	return nil
}

func (my *FileLoader) loadFile(path string, h Hoster) error {
	log.Debug().Str("file", path).Msg("开始从文件加载模型")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	var doc modelFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = utl.Unmarshal(data, &doc)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("不支持的文件类型: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("解析文件失败: %w", err)
	}

	entries := lo.SliceToMap(doc.Models, func(m modelEntry) (string, modelEntry) { return m.Name, m })
	for _, m := range doc.Models {
		if m.Name == "" {
			return fmt.Errorf("模型缺少名称")
		}
		if m.Abstract || IsHidden(m.Name) {
			continue
		}
		fields, err := inherit(m, entries, map[string]bool{})
		if err != nil {
			return err
		}
		class := &protocol.Class{Name: m.Name, Source: path}
		for _, f := range fields {
			field, err := toField(m.Name, f)
			if err != nil {
				return err
			}
			class.AddField(field)
		}
		if err := h.PutClass(class); err != nil {
			return fmt.Errorf("注入Hoster失败: %w", err)
		}
	}
	log.Debug().Str("file", path).Int("classes", len(doc.Models)).Msg("从文件加载模型完成")
	return nil
}

// inherit 父模型的字段排在前面
func inherit(m modelEntry, entries map[string]modelEntry, seen map[string]bool) ([]fieldEntry, error) {
	if m.Extends == "" {
		return m.Fields, nil
	}
	if seen[m.Name] {
		return nil, fmt.Errorf("模型继承存在循环: %s", m.Name)
	}
	seen[m.Name] = true
	parent, ok := entries[m.Extends]
	if !ok {
		return nil, fmt.Errorf("模型 %s 的父模型 %s 不存在", m.Name, m.Extends)
	}
	fields, err := inherit(parent, entries, seen)
	if err != nil {
		return nil, err
	}
	return append(append([]fieldEntry{}, fields...), m.Fields...), nil
}

func toField(model string, f fieldEntry) (*protocol.Field, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("模型 %s 存在未命名字段", model)
	}
	field := &protocol.Field{Name: f.Name, Type: f.Type}
	if f.References == "" {
		return field, nil
	}

	target, targetField, _ := strings.Cut(f.References, ".")
	if target == "" {
		return nil, fmt.Errorf("字段 %s.%s 的引用无效: %q", model, f.Name, f.References)
	}
	field.Type = lo.Ternary(field.Type == "", ForeignKeyType, field.Type)
	field.Relation = &protocol.Relation{
		Model:       model,
		TargetModel: target,
		Field:       f.Name,
		TargetField: lo.Ternary(targetField == "", "id", targetField),
	}
	return field, nil
}
