package metadata

import (
	"context"
	"strings"

	"github.com/ichaly/ideabase/erd/protocol"
)

// Loader名称常量
const (
	LoaderDatabase = "database"
	LoaderSource   = "source"
	LoaderRegistry = "registry"
	LoaderFile     = "file"
)

// Hoster 定义元数据承载者接口
// 负责模型的添加和获取
type Hoster interface {
	PutClass(class *protocol.Class) error
	GetClass(name string) (*protocol.Class, bool)
}

// Loader 定义加载器接口
type Loader interface {
	Name() string
	Load(ctx context.Context, h Hoster) error
	Support() bool
	Priority() int
}

// IsHidden 以下划线开头的名称不作为模型
func IsHidden(name string) bool {
	return strings.HasPrefix(name, "_")
}
