package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

type FileWalker struct {
	Fs afero.Fs
	// Exclude 中的目录不会被进入
	Exclude []string
}

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{Fs: fs}
}

// Walk 遍历 root 下的所有普通文件（包含隐藏文件），不跟随符号链接
func (w *FileWalker) Walk(root string, callback func(path string, info os.FileInfo) error) error {
	exists, err := afero.DirExists(w.Fs, root)
	if err != nil {
		return fmt.Errorf("检查目录失败 %s: %w", root, err)
	}
	if !exists {
		return fmt.Errorf("directory %s: %w", root, internal.ErrNotFound)
	}

	return afero.Walk(w.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("访问路径出错")
			return nil
		}

		if info.IsDir() && w.excluded(path) {
			logger.Get().Debug().Str("path", path).Msg("跳过排除的目录")
			return filepath.SkipDir
		}

		// afero.Walk 使用 lstat，符号链接、设备文件等都不是普通文件
		if !info.Mode().IsRegular() {
			return nil
		}

		return callback(path, info)
	})
}

func (w *FileWalker) excluded(path string) bool {
	clean := filepath.Clean(path)
	for _, dir := range w.Exclude {
		if clean == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// Scan 返回 root 下全部普通文件的记录，顺序不做保证。exclude 中的目录整体跳过。
func Scan(fs afero.Fs, root string, exclude ...string) ([]internal.FileRecord, error) {
	logger.Get().Debug().Msgf("扫描目录: %s", root)

	var records []internal.FileRecord
	walker := NewFileWalker(fs)
	walker.Exclude = exclude
	err := walker.Walk(root, func(path string, info os.FileInfo) error {
		records = append(records, internal.FileRecord{
			Path: path,
			Size: info.Size(),
			Ext:  Extension(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info().Msgf("扫描完成，共找到 %d 个文件", len(records))
	return records, nil
}

// Extension 返回小写且不带点的扩展名；".bashrc" 这样的隐藏文件没有扩展名
func Extension(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
