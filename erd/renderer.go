package erd

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed assets/erd.dot
var erdTemplate string

// 模板在进程内只解析一次
var graphTemplate = template.Must(template.New("erd").Funcs(template.FuncMap{
	"quote": quote,
}).Parse(erdTemplate))

// Renderer 负责将关系图渲染为DOT文本
type Renderer struct {
	tpl *template.Template
}

// NewRenderer 创建渲染器
func NewRenderer() *Renderer {
	return &Renderer{tpl: graphTemplate}
}

// Render 相同的输入总是得到相同的输出
func (my *Renderer) Render(g *Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("渲染失败: 关系图为空")
	}
	var buf bytes.Buffer
	if err := my.tpl.Execute(&buf, g); err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	return buf.Bytes(), nil
}

// quote DOT标识符
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
