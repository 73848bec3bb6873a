package internal

import (
	"testing"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionUnmarshal(t *testing.T) {
	testCases := []struct {
		name     string
		yamlData string
		check    func(t *testing.T, k *koanf.Koanf)
	}{
		{
			name: "图形配置",
			yamlData: `
graph:
  main-color: "#000000"
  bg-color: "#ffffff"
  font-size: 14
`,
			check: func(t *testing.T, k *koanf.Koanf) {
				var c GraphConfig
				require.NoError(t, k.UnmarshalWithConf("graph", &c, koanf.UnmarshalConf{Tag: "mapstructure"}))
				assert.Equal(t, GraphConfig{MainColor: "#000000", BgColor: "#ffffff", FontSize: 14}, c)
			},
		},
		{
			name: "时间间隔字符串",
			yamlData: `
live:
  host: localhost
  debounce: 250ms
  close-timeout: 3s
`,
			check: func(t *testing.T, k *koanf.Koanf) {
				var c LiveConfig
				require.NoError(t, k.UnmarshalWithConf("live", &c, koanf.UnmarshalConf{Tag: "mapstructure"}))
				assert.Equal(t, 250*time.Millisecond, c.Debounce)
				assert.Equal(t, 3*time.Second, c.CloseTimeout)
				assert.Equal(t, "localhost", c.Host)
			},
		},
		{
			name: "基础模型列表",
			yamlData: `
source:
  bases: [gorm.io/gorm.Model, Base]
  camel: true
`,
			check: func(t *testing.T, k *koanf.Koanf) {
				var c SourceConfig
				require.NoError(t, k.UnmarshalWithConf("source", &c, koanf.UnmarshalConf{Tag: "mapstructure"}))
				assert.Equal(t, []string{"gorm.io/gorm.Model", "Base"}, c.Bases)
				assert.True(t, c.Camel)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k := koanf.New(".")
			err := k.Load(rawbytes.Provider([]byte(tc.yamlData)), yaml.Parser())
			require.NoError(t, err)
			tc.check(t, k)
		})
	}
}
