package protocol

import "fmt"

// Relation 表示一条外键关系
type Relation struct {
	Model       string `json:"model"`        // 持有外键的模型
	TargetModel string `json:"target_model"` // 被引用的模型
	Field       string `json:"field"`        // 外键字段名
	TargetField string `json:"target_field"` // 被引用字段名
}

// Key 关系的唯一标识
func (my Relation) Key() string {
	return fmt.Sprintf("%s.%s->%s.%s", my.Model, my.Field, my.TargetModel, my.TargetField)
}
