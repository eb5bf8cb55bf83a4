package quarantine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

// 生成唯一文件名的最大尝试次数，超过后改用 uuid 前缀
const maxRenameAttempts = 100

// Ledger 记录隔离文件的原始路径，可以为 nil
type Ledger interface {
	Record(batchID, quarantineDir, name, originalPath string, size int64) error
	// Originals 返回文件名到原始路径的映射
	Originals(quarantineDir string) (map[string]string, error)
	Forget(quarantineDir, name string) error
	ForgetAll(quarantineDir string) error
}

type Entry struct {
	// Name 隔离目录中的文件名
	Name string
	// Path 移动后的完整路径
	Path string
	Size int64
	// Source 移动前的路径
	Source string
}

type Manager struct {
	fs     afero.Fs
	ledger Ledger
}

func NewManager(fs afero.Fs, ledger Ledger) *Manager {
	return &Manager{fs: fs, ledger: ledger}
}

// Dir 返回 root 对应的隔离目录
func Dir(root string) string {
	return filepath.Join(root, internal.QuarantineDirName)
}

// Quarantine 把每个文件按文件名移动到 quarantineDir。
// 同名冲突时追加数字后缀，不覆盖已有文件。任一文件移动失败立即返回错误，
// 已移动的文件不回滚，并随错误一起返回。
func (m *Manager) Quarantine(paths []string, quarantineDir string) ([]Entry, error) {
	if err := m.fs.MkdirAll(quarantineDir, 0755); err != nil {
		return nil, fmt.Errorf("创建隔离目录失败 %s: %w: %w", quarantineDir, internal.ErrIO, err)
	}

	batchID := uuid.NewString()
	moved := make([]Entry, 0, len(paths))

	for _, src := range paths {
		info, err := m.fs.Stat(src)
		if err != nil {
			return moved, fmt.Errorf("stat %s: %w: %w", src, internal.ErrIO, err)
		}

		dst, err := m.uniquePath(quarantineDir, filepath.Base(src))
		if err != nil {
			return moved, err
		}

		if err := m.moveFile(src, dst); err != nil {
			return moved, fmt.Errorf("隔离文件失败 %s: %w: %w", src, internal.ErrIO, err)
		}

		entry := Entry{Name: filepath.Base(dst), Path: dst, Size: info.Size(), Source: src}
		moved = append(moved, entry)
		logger.Get().Debug().Str("source", src).Str("destination", dst).Msg("已隔离")

		if m.ledger != nil {
			if err := m.ledger.Record(batchID, ledgerKey(quarantineDir), entry.Name, absPath(src), entry.Size); err != nil {
				logger.Get().Warn().Err(err).Str("path", src).Msg("写入隔离记录失败")
			}
		}
	}

	return moved, nil
}

// Restore 把隔离目录中的所有文件移回 targetDir，然后删除隔离目录。
// 有隔离记录且原始路径位于 targetDir 之下时，文件回到原来的子目录并恢复原名。
func (m *Manager) Restore(quarantineDir, targetDir string) ([]Entry, error) {
	exists, err := afero.DirExists(m.fs, quarantineDir)
	if err != nil {
		return nil, fmt.Errorf("检查隔离目录失败: %w: %w", internal.ErrIO, err)
	}
	if !exists {
		return nil, fmt.Errorf("no quarantine directory at %s: %w", quarantineDir, internal.ErrNotFound)
	}

	entries, err := m.List(quarantineDir)
	if err != nil {
		return nil, err
	}

	if err := m.fs.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目标目录失败 %s: %w: %w", targetDir, internal.ErrIO, err)
	}

	key := ledgerKey(quarantineDir)
	originals := m.originals(key)

	restored := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		dir, name := targetDir, entry.Name
		if original, ok := originals[entry.Name]; ok {
			dir, name = restoreDir(targetDir, original), filepath.Base(original)
		}

		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return restored, fmt.Errorf("创建目录失败 %s: %w: %w", dir, internal.ErrIO, err)
		}

		dst, err := m.uniquePath(dir, name)
		if err != nil {
			return restored, err
		}

		if err := m.moveFile(entry.Path, dst); err != nil {
			return restored, fmt.Errorf("恢复文件失败 %s: %w: %w", entry.Path, internal.ErrIO, err)
		}

		restored = append(restored, Entry{Name: filepath.Base(dst), Path: dst, Size: entry.Size, Source: entry.Path})
		logger.Get().Debug().Str("source", entry.Path).Str("destination", dst).Msg("已恢复")

		if m.ledger != nil {
			if err := m.ledger.Forget(key, entry.Name); err != nil {
				logger.Get().Warn().Err(err).Str("name", entry.Name).Msg("删除隔离记录失败")
			}
		}
	}

	// 只删除空目录，避免误删意外放入的子目录
	if err := m.fs.Remove(quarantineDir); err != nil {
		return restored, fmt.Errorf("删除隔离目录失败 %s: %w: %w", quarantineDir, internal.ErrIO, err)
	}

	return restored, nil
}

// Purge 永久删除隔离目录，返回被删除的文件。目录不存在时不做任何事。
func (m *Manager) Purge(quarantineDir string) ([]Entry, error) {
	exists, err := afero.DirExists(m.fs, quarantineDir)
	if err != nil {
		return nil, fmt.Errorf("检查隔离目录失败: %w: %w", internal.ErrIO, err)
	}
	if !exists {
		return nil, nil
	}

	entries, err := m.List(quarantineDir)
	if err != nil {
		return nil, err
	}

	if err := m.fs.RemoveAll(quarantineDir); err != nil {
		return nil, fmt.Errorf("删除隔离目录失败 %s: %w: %w", quarantineDir, internal.ErrIO, err)
	}

	if m.ledger != nil {
		if err := m.ledger.ForgetAll(ledgerKey(quarantineDir)); err != nil {
			logger.Get().Warn().Err(err).Msg("清理隔离记录失败")
		}
	}

	return entries, nil
}

// List 列出隔离目录中的文件（只有一层）
func (m *Manager) List(quarantineDir string) ([]Entry, error) {
	infos, err := afero.ReadDir(m.fs, quarantineDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", quarantineDir, internal.ErrNotFound)
		}
		return nil, fmt.Errorf("读取隔离目录失败 %s: %w: %w", quarantineDir, internal.ErrIO, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			logger.Get().Warn().Str("name", info.Name()).Msg("隔离目录中存在子目录，已忽略")
			continue
		}
		entries = append(entries, Entry{
			Name: info.Name(),
			Path: filepath.Join(quarantineDir, info.Name()),
			Size: info.Size(),
		})
	}
	return entries, nil
}

func (m *Manager) originals(key string) map[string]string {
	if m.ledger == nil {
		return nil
	}
	originals, err := m.ledger.Originals(key)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("查询隔离记录失败，按隔离目录中的文件名恢复")
		return nil
	}
	return originals
}

// restoreDir 原始路径位于 targetDir 之下时返回原来的子目录，否则返回 targetDir
func restoreDir(targetDir, original string) string {
	rel, err := filepath.Rel(absPath(targetDir), filepath.Dir(original))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return targetDir
	}
	return filepath.Join(targetDir, rel)
}

// uniquePath 在 dir 中为 name 找一个不存在的路径：name, name_1, ..., 最后使用 uuid 前缀
func (m *Manager) uniquePath(dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	exists, err := afero.Exists(m.fs, dst)
	if err != nil {
		return "", fmt.Errorf("检查目标文件失败: %w: %w", internal.ErrIO, err)
	}
	if !exists {
		return dst, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < maxRenameAttempts; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		exists, err := afero.Exists(m.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("检查目标文件失败: %w: %w", internal.ErrIO, err)
		}
		if !exists {
			if i == 1 {
				logger.Get().Warn().Msgf("目标文件已存在，重命名为: %s", candidate)
			}
			return candidate, nil
		}
	}

	return filepath.Join(dir, uuid.NewString()+"_"+name), nil
}

// moveFile 优先使用 rename，失败时（例如跨卷）退回到复制后删除
func (m *Manager) moveFile(src, dst string) error {
	err := m.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	logger.Get().Debug().Err(err).Str("source", src).Str("destination", dst).Msg("直接重命名失败，尝试复制后删除")

	info, err := m.fs.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if err := m.copyFile(src, dst, info.Mode().Perm()); err != nil {
		m.fs.Remove(dst)
		return err
	}

	return m.fs.Remove(src)
}

func (m *Manager) copyFile(src, dst string, perm os.FileMode) error {
	in, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer in.Close()

	out, err := m.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("复制文件内容失败: %w", err)
	}
	return out.Close()
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func ledgerKey(quarantineDir string) string {
	return absPath(quarantineDir)
}
