package utl

import (
	"strings"
)

// JoinString 连接多个字符串
func JoinString(elem ...string) string {
	if len(elem) == 0 {
		return ""
	}

	// 预计算总长度以优化内存分配
	totalLen := 0
	for _, e := range elem {
		totalLen += len(e)
	}

	b := strings.Builder{}
	b.Grow(totalLen)
	for _, e := range elem {
		b.WriteString(e)
	}
	return b.String()
}

// StartWithAny 检查字符串是否以给定的任一前缀开始
func StartWithAny(s string, list ...string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, p := range list {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}
