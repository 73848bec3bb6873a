package erd

import "github.com/ichaly/ideabase/erd/protocol"

// Relation 图中的一条外键连线
type Relation = protocol.Relation

// Field 渲染用字段
type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Model 渲染用模型，颜色统一取自配置
type Model struct {
	Name      string  `json:"name"`
	Fields    []Field `json:"fields"`
	BgColor   string  `json:"bg_color"`
	MainColor string  `json:"main_color"`
}

// Graph 一次绘制的完整上下文
type Graph struct {
	Models    []Model    `json:"models"`
	Relations []Relation `json:"relations"`
	FontSize  int        `json:"font_size"`
}
