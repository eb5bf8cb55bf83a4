package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	KeyLastDir  = "last_dir"
	KeyScanMode = "scan_mode"
)

type Store interface {
	// Get 返回值以及是否存在
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// FileStore 每个键对应目录下的一个 <key>.txt 文件
type FileStore struct {
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取配置 %s 失败: %w", key, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *FileStore) Set(key, value string) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(key), []byte(value+"\n"), 0644); err != nil {
		return fmt.Errorf("写入配置 %s 失败: %w", key, err)
	}
	return nil
}

// MemStore 内存实现
type MemStore map[string]string

func (m MemStore) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m MemStore) Set(key, value string) error {
	m[key] = value
	return nil
}
