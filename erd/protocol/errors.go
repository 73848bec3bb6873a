package protocol

import (
	"errors"
	"fmt"
)

// ErrLoad 模型加载失败
var ErrLoad = errors.New("模型加载失败")

// LoadError 记录加载失败的输入
type LoadError struct {
	Path string
	Err  error
}

// NewLoadError 包装加载错误
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

func (my *LoadError) Error() string {
	if my.Path == "" {
		return fmt.Sprintf("%s: %v", ErrLoad, my.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrLoad, my.Path, my.Err)
}

func (my *LoadError) Unwrap() []error {
	return []error{ErrLoad, my.Err}
}
