package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/utl"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ProfileLoadStrategy 配置文件环境加载策略，按 name-profile.ext 合并
type ProfileLoadStrategy struct {
	basePath   string
	baseName   string
	configType string
}

// NewProfileLoadStrategy 创建配置文件环境加载策略
func NewProfileLoadStrategy(configFile, configType string) *ProfileLoadStrategy {
	if configFile == "" {
		return &ProfileLoadStrategy{}
	}

	ext := filepath.Ext(configFile)
	if configType == "" {
		configType = strings.TrimPrefix(ext, ".")
	}

	return &ProfileLoadStrategy{
		basePath:   filepath.Dir(configFile),
		baseName:   strings.TrimSuffix(filepath.Base(configFile), ext),
		configType: configType,
	}
}

// Load 实现LoadStrategy接口，加载profile配置
func (my *ProfileLoadStrategy) Load(k *koanf.Koanf) error {
	if my.basePath == "" || my.baseName == "" {
		return nil
	}

	profiles := ActiveProfiles(k)
	if len(profiles) == 0 {
		return nil
	}

	parser, err := parserFor(my.configType)
	if err != nil {
		return err
	}

	for _, profile := range profiles {
		profileFilePath := filepath.Join(my.basePath, utl.JoinString(my.baseName, "-", profile, ".", my.configType))

		if _, err := os.Stat(profileFilePath); os.IsNotExist(err) {
			log.Debug().Str("profile", profile).Str("file", profileFilePath).Msg("配置文件不存在，跳过")
			continue
		}

		if err := k.Load(file.Provider(profileFilePath), parser); err != nil {
			return fmt.Errorf("合并profile配置文件失败: %w", err)
		}

		log.Info().Str("profile", profile).Str("file", profileFilePath).Msg("配置文件已合并")
	}

	return nil
}

// GetName 返回策略名称
func (my *ProfileLoadStrategy) GetName() string {
	return "Profile配置"
}

// ActiveProfiles 获取激活的profiles，mode总是排在最后
func ActiveProfiles(k *koanf.Koanf) []string {
	var profiles []string

	for _, p := range strings.Split(k.String("profiles.active"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			profiles = append(profiles, p)
		}
	}

	if mode := k.String("mode"); mode != "" {
		profiles = append(profiles, mode)
	}

	return profiles
}
