package protocol

// Class 表示一个模型定义
type Class struct {
	Name   string   `json:"name" yaml:"name"`                         // 模型名
	Source string   `json:"source,omitempty" yaml:"source,omitempty"` // 来源文件或数据源
	Fields []*Field `json:"fields" yaml:"fields"`                     // 按声明顺序排列的字段
}

// Field 表示模型的一个字段
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Type     string    `json:"type" yaml:"type"`
	Relation *Relation `json:"relation,omitempty" yaml:"relation,omitempty"` // 外键关系
}

// AddField 追加字段，同名字段会被替换并保留原位置
func (my *Class) AddField(field *Field) {
	if field == nil || field.Name == "" {
		return
	}
	for i, f := range my.Fields {
		if f.Name == field.Name {
			my.Fields[i] = field
			return
		}
	}
	my.Fields = append(my.Fields, field)
}

// GetField 按名称查找字段
func (my *Class) GetField(name string) (*Field, bool) {
	for _, f := range my.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Relations 按字段顺序返回所有外键关系
func (my *Class) Relations() []Relation {
	var list []Relation
	for _, f := range my.Fields {
		if f.Relation != nil {
			list = append(list, *f.Relation)
		}
	}
	return list
}
