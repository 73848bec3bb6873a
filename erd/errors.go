package erd

import (
	"errors"
	"fmt"

	"github.com/ichaly/ideabase/erd/protocol"
)

// ErrLoad 模型加载失败，首次绘制时退出，刷新时忽略
var ErrLoad = protocol.ErrLoad

// LoadError 记录加载失败的输入路径
type LoadError = protocol.LoadError

// ErrDangling 外键指向了未加载的模型
var ErrDangling = errors.New("外键引用的模型不存在")

// ExportError 布局引擎执行失败
type ExportError struct {
	Command string
	Stderr  string
	Err     error
}

func (my *ExportError) Error() string {
	if my.Stderr == "" {
		return fmt.Sprintf("导出失败: %s: %v", my.Command, my.Err)
	}
	return fmt.Sprintf("导出失败: %s: %v: %s", my.Command, my.Err, my.Stderr)
}

func (my *ExportError) Unwrap() error {
	return my.Err
}
