package utl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinString(t *testing.T) {
	assert.Equal(t, "", JoinString())
	assert.Equal(t, "erd-dev.yml", JoinString("erd", "-", "dev", ".yml"))
}

func TestStartWithAny(t *testing.T) {
	p, ok := StartWithAny("postgres://localhost", "mysql://", "postgres://")
	assert.True(t, ok)
	assert.Equal(t, "postgres://", p)

	_, ok = StartWithAny("", "a")
	assert.False(t, ok)
}

func TestMD5(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", MD5("hello"))
	assert.Equal(t, MD5("hello"), Md5File(strings.NewReader("hello")))
}

func TestJSON(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	data, err := Marshal(item{Name: "User"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"User"}`, string(data))

	var out item
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "User", out.Name)
}

func TestReplaceFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "sub", "out.svg")
	require.NoError(t, WriteBytes([]byte("old"), target))
	require.NoError(t, ReplaceFile(bytes.NewReader([]byte("new")), target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// 目录中不应残留临时文件
	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "/tmp/erd", TrimExt("/tmp/erd.svg"))
	assert.Equal(t, "erd", TrimExt("erd"))
}
