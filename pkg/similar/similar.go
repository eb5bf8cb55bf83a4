package similar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/h2non/filetype"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
	"github.com/Yuvraj-cyborg/deduck/pkg/scanner"
)

// 文件类型检测所需的文件头部大小（字节）
const headerSize = 261

var errNotImage = errors.New("not an image")

type Fingerprint struct {
	Path string
	Hash uint64
}

// Distance 汉明距离：不同比特位的个数
func (f Fingerprint) Distance(other Fingerprint) int {
	a := goimagehash.NewImageHash(f.Hash, goimagehash.PHash)
	b := goimagehash.NewImageHash(other.Hash, goimagehash.PHash)
	d, err := a.Distance(b)
	if err != nil {
		// 两者种类相同，不会出错
		return 64
	}
	return d
}

type Fingerprinter struct {
	Fs afero.Fs
}

func NewFingerprinter(fs afero.Fs) *Fingerprinter {
	return &Fingerprinter{Fs: fs}
}

// Fingerprint 解码图片并计算感知哈希
func (f *Fingerprinter) Fingerprint(path string) (Fingerprint, error) {
	file, err := f.Fs.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("打开图片失败 %s: %w: %w", path, internal.ErrIO, err)
	}
	defer file.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Fingerprint{}, fmt.Errorf("读取文件头部失败 %s: %w: %w", path, internal.ErrIO, err)
	}
	head = head[:n]

	if !filetype.IsImage(head) {
		return Fingerprint{}, fmt.Errorf("%s: %w", path, errNotImage)
	}

	img, _, err := image.Decode(io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("解码图片失败 %s: %w", path, err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("计算感知哈希失败 %s: %w", path, err)
	}

	return Fingerprint{Path: path, Hash: hash.GetHash()}, nil
}

// Fingerprints 并行计算所有图片的指纹，无法打开或解码的图片记录警告后跳过。
// 结果按路径排序。
func (f *Fingerprinter) Fingerprints(paths []string, workers int) ([]Fingerprint, error) {
	if workers <= 0 {
		workers = internal.DefaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	// 每个任务只写自己的下标
	results := make([]*Fingerprint, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			fp, err := f.Fingerprint(path)
			if err != nil {
				logger.Get().Warn().Err(err).Str("path", path).Msg("无法处理图片，已跳过")
				return
			}
			results[i] = &fp
		})
		if err != nil {
			wg.Done()
			logger.Get().Warn().Err(err).Str("path", path).Msg("提交指纹任务失败")
		}
	}
	wg.Wait()

	var prints []Fingerprint
	for _, fp := range results {
		if fp != nil {
			prints = append(prints, *fp)
		}
	}
	sort.Slice(prints, func(i, j int) bool { return prints[i].Path < prints[j].Path })

	logger.Get().Debug().Msgf("图片指纹计算完成: %d/%d", len(prints), len(paths))
	return prints, nil
}

// Match 对每一对指纹只比较一次，距离不超过 threshold 的配对挂在前一个路径下。
// 不做传递闭包：A~B 且 B~C 并不意味着 A 与 C 归为一组。
func Match(prints []Fingerprint, threshold int) map[string][]string {
	sorted := append([]Fingerprint(nil), prints...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	groups := make(map[string][]string)
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].Path == sorted[j].Path {
				continue
			}
			if sorted[i].Distance(sorted[j]) <= threshold {
				groups[sorted[i].Path] = append(groups[sorted[i].Path], sorted[j].Path)
			}
		}
	}
	return groups
}

// Similar 计算指纹并返回相似图片分组
func Similar(fs afero.Fs, paths []string, threshold, workers int) (map[string][]string, error) {
	prints, err := NewFingerprinter(fs).Fingerprints(paths, workers)
	if err != nil {
		return nil, err
	}
	return Match(prints, threshold), nil
}

// ImagePaths 过滤出扩展名属于 extensions 的路径
func ImagePaths(paths []string, extensions []string) []string {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var images []string
	for _, path := range paths {
		if allowed[scanner.Extension(path)] {
			images = append(images, path)
		}
	}
	return images
}
