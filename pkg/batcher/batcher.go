package batcher

import (
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

type Key struct {
	Ext  string
	Size int64
}

type Options struct {
	// Extensions 允许的扩展名（不带点，大小写不敏感）
	Extensions []string
	// AllExtensions 跳过扩展名过滤，所有文件都参与分组
	AllExtensions bool
}

// Batch 按 (扩展名, 大小) 分组。每个候选文件都会重新 stat 一次，stat 失败的文件
// 记录警告后丢弃。只有一个成员的分组仍保留在结果中。
func Batch(fs afero.Fs, records []internal.FileRecord, opts Options) map[Key][]string {
	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	batches := make(map[Key][]string)
	for _, record := range records {
		ext := strings.ToLower(record.Ext)
		if !opts.AllExtensions && !allowed[ext] {
			continue
		}

		info, err := fs.Stat(record.Path)
		if err != nil {
			logger.Get().Warn().Err(err).Str("path", record.Path).Msg("无法读取文件大小，已跳过")
			continue
		}

		key := Key{Ext: ext, Size: info.Size()}
		batches[key] = append(batches[key], record.Path)
	}

	logger.Get().Debug().Msgf("分组完成，共 %d 个分组", len(batches))
	return batches
}

// Candidates 展开所有成员数大于 1 的分组，返回需要计算哈希的文件
func Candidates(batches map[Key][]string) []string {
	keys := make([]Key, 0, len(batches))
	for key, paths := range batches {
		if len(paths) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Ext != keys[j].Ext {
			return keys[i].Ext < keys[j].Ext
		}
		return keys[i].Size < keys[j].Size
	})

	var paths []string
	for _, key := range keys {
		paths = append(paths, batches[key]...)
	}
	return paths
}
