package deduplicator

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/batcher"
	"github.com/Yuvraj-cyborg/deduck/pkg/hasher"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
	"github.com/Yuvraj-cyborg/deduck/pkg/quarantine"
	"github.com/Yuvraj-cyborg/deduck/pkg/scanner"
	"github.com/Yuvraj-cyborg/deduck/pkg/similar"
)

type Options struct {
	Workers         int
	Extensions      []string
	AllExtensions   bool
	ImageExtensions []string
	Threshold       int
	// OnProgress 在每个文件哈希完成后调用，参数为已完成数量和总数，可能被并发调用
	OnProgress func(done, total int)
}

type Deduplicator struct {
	fs   afero.Fs
	opts Options
}

type Result struct {
	FilesFound int
	Candidates int
	Algorithm  hasher.Algorithm
	Groups     []DuplicateGroup
}

func NewDeduplicator(fs afero.Fs, opts Options) *Deduplicator {
	if opts.Workers <= 0 {
		opts.Workers = internal.DefaultWorkers
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = internal.DefaultExtensions
	}
	if len(opts.ImageExtensions) == 0 {
		opts.ImageExtensions = internal.DefaultImageExtensions
	}
	if opts.Threshold <= 0 {
		opts.Threshold = internal.DefaultSimilarityThreshold
	}
	return &Deduplicator{fs: fs, opts: opts}
}

// Detect 扫描 root，按（扩展名，大小）分批后只对可能重复的文件计算摘要。
// 深度模式下还会对扫描到的所有图片计算感知哈希，相似分组追加在精确分组之后。
func (d *Deduplicator) Detect(root string, mode internal.ScanMode) (*Result, error) {
	algo, err := hasher.AlgorithmForMode(mode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Get().Info().Msgf("开始检测重复文件，模式: %s，目录: %s", mode, root)

	records, err := scanner.Scan(d.fs, root, quarantine.Dir(root))
	if err != nil {
		return nil, err
	}

	batches := batcher.Batch(d.fs, records, batcher.Options{
		Extensions:    d.opts.Extensions,
		AllExtensions: d.opts.AllExtensions,
	})
	candidates := batcher.Candidates(batches)
	logger.Get().Info().Msgf("分批完成，共 %d 个批次，%d 个候选文件", len(batches), len(candidates))

	result := &Result{
		FilesFound: len(records),
		Candidates: len(candidates),
		Algorithm:  algo,
	}

	if len(candidates) > 0 {
		var progress func(done int)
		if d.opts.OnProgress != nil {
			total := len(candidates)
			progress = func(done int) { d.opts.OnProgress(done, total) }
		}

		digests, err := hasher.HashFiles(d.fs, candidates, algo, d.opts.Workers, progress)
		if err != nil {
			return nil, fmt.Errorf("计算文件摘要失败: %w", err)
		}
		result.Groups = FromDigests(digests.Duplicates())
	}

	// 相似度比较覆盖所有扫描到的图片，不受（扩展名，大小）分批限制
	if mode == internal.ScanDeep {
		images := similar.ImagePaths(recordPaths(records), d.opts.ImageExtensions)
		logger.Get().Info().Msgf("深度模式，共 %d 张图片参与相似度比较", len(images))
		if len(images) > 1 {
			matches, err := similar.Similar(d.fs, images, d.opts.Threshold, d.opts.Workers)
			if err != nil {
				return nil, fmt.Errorf("计算图片相似度失败: %w", err)
			}
			result.Groups = append(result.Groups, FromSimilar(matches)...)
		}
	}

	logger.Get().Info().Msgf("检测完成，共 %d 个重复分组，耗时: %v", len(result.Groups), time.Since(start))
	return result, nil
}

func recordPaths(records []internal.FileRecord) []string {
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	return paths
}
