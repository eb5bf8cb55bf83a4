package cmd

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// hashProgress 哈希进度条，回调会被多个工作线程并发调用，每次只前进一格
type hashProgress struct {
	w    io.Writer
	once sync.Once
	bar  *progressbar.ProgressBar
}

// newProgress 返回哈希进度回调，第一次调用时按总数创建进度条
func newProgress() func(done, total int) {
	return (&hashProgress{w: os.Stderr}).update
}

func (p *hashProgress) update(_, total int) {
	p.once.Do(func() {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetDescription("Hashing files..."),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		)
	})
	p.bar.Add(1)
}
