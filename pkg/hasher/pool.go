package hasher

import (
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

type HashTask struct {
	Path string
}

// HashPool 每个工作线程把结果折叠进自己的 Digests，任务通道关闭后再交出部分结果，
// 计算阶段不共享可变状态。
type HashPool struct {
	fs         afero.Fs
	algo       Algorithm
	workers    int
	tasks      chan HashTask
	partials   chan Digests
	wg         sync.WaitGroup
	pool       *ants.Pool
	processed  atomic.Int64
	onProgress func(done int)
}

func NewHashPool(fs afero.Fs, algo Algorithm, workers int) *HashPool {
	if workers <= 0 {
		workers = internal.DefaultWorkers
	}
	logger.Get().Debug().Msgf("创建哈希计算池，算法: %s，工作线程数: %d", algo, workers)
	return &HashPool{
		fs:       fs,
		algo:     algo,
		workers:  workers,
		tasks:    make(chan HashTask, internal.DefaultBufferSize),
		partials: make(chan Digests, workers),
	}
}

// OnProgress 设置进度回调，会在多个工作线程中并发调用
func (p *HashPool) OnProgress(fn func(done int)) {
	p.onProgress = fn
}

func (p *HashPool) Start() error {
	var err error
	p.pool, err = ants.NewPool(p.workers)
	if err != nil {
		logger.Get().Error().Err(err).Msg("创建 goroutine 池失败")
		return err
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		if err := p.pool.Submit(p.worker); err != nil {
			p.wg.Done()
			logger.Get().Error().Err(err).Msg("提交工作线程失败")
			close(p.tasks)
			p.pool.Release()
			return err
		}
	}
	return nil
}

func (p *HashPool) worker() {
	defer p.wg.Done()

	partial := make(Digests)
	for task := range p.tasks {
		digest, err := CalculateHash(p.fs, task.Path, p.algo)
		if err != nil {
			logger.Get().Warn().Err(err).Str("path", task.Path).Msg("无法计算哈希，已跳过")
		} else {
			partial.Add(digest, task.Path)
		}

		done := p.processed.Add(1)
		if p.onProgress != nil {
			p.onProgress(int(done))
		}
	}
	p.partials <- partial
}

func (p *HashPool) AddTask(task HashTask) {
	p.tasks <- task
}

// Wait 关闭任务通道，等待所有工作线程结束并归并部分结果
func (p *HashPool) Wait() Digests {
	close(p.tasks)

	go func() {
		p.wg.Wait()
		close(p.partials)
	}()

	result := make(Digests)
	for partial := range p.partials {
		result.Merge(partial)
	}

	if p.pool != nil {
		p.pool.Release()
	}

	return result.Sort()
}

// Processed 已处理（包括失败）的文件数
func (p *HashPool) Processed() int {
	return int(p.processed.Load())
}

// HashFiles 并行计算所有文件的摘要，读取失败的文件不会出现在结果中
func HashFiles(fs afero.Fs, paths []string, algo Algorithm, workers int, onProgress func(done int)) (Digests, error) {
	if _, err := algo.New(); err != nil {
		return nil, err
	}

	pool := NewHashPool(fs, algo, workers)
	pool.OnProgress(onProgress)
	if err := pool.Start(); err != nil {
		return nil, err
	}

	for _, path := range paths {
		pool.AddTask(HashTask{Path: path})
	}

	return pool.Wait(), nil
}
