package utl

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Md5File 计算文件内容的MD5值
func Md5File(src io.Reader) string {
	dst := md5.New()
	_, _ = io.Copy(dst, src)
	return hex.EncodeToString(dst.Sum(nil))
}

// WriteFile 将数据写入文件
func WriteFile(source io.Reader, target string) (err error) {
	if source == nil {
		return fmt.Errorf("nil source reader")
	}
	if target == "" {
		return fmt.Errorf("empty target path")
	}

	// 创建目标目录
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// 创建或覆盖目标文件
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		closeErr := file.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(file, source); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// WriteBytes 将字节写入文件
func WriteBytes(data []byte, target string) error {
	return WriteFile(bytes.NewReader(data), target)
}

// ReplaceFile 用临时文件原子替换目标文件，读者不会看到写了一半的内容
func ReplaceFile(source io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err = io.Copy(tmp, source); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write data: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(name, target); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// TrimExt 去掉路径的扩展名
func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
