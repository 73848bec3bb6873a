package utl

import (
	jsoniter "github.com/json-iterator/go"
)

// 使用项目标准的json序列化
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Unmarshal 解析JSON数据到结构体
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal 将结构体序列化为JSON
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
