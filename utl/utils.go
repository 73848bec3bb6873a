package utl

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5 计算输入字符串的 MD5 哈希值并返回其十六进制表示
func MD5(s string) string {
	m := md5.New()
	m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}
