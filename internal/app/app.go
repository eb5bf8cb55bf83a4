package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/config"
	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/deduplicator"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
	"github.com/Yuvraj-cyborg/deduck/pkg/quarantine"
	"github.com/Yuvraj-cyborg/deduck/pkg/store"
)

// Chooser 在需要时向用户询问扫描模式和清理模式
type Chooser interface {
	ScanMode() (internal.ScanMode, error)
	CleanMode() (internal.CleanMode, error)
}

// FixedChooser 使用命令行给定的值，未给定时交给 Fallback
type FixedChooser struct {
	Scan     *internal.ScanMode
	Clean    *internal.CleanMode
	Fallback Chooser
}

func (c FixedChooser) ScanMode() (internal.ScanMode, error) {
	if c.Scan != nil {
		return *c.Scan, nil
	}
	if c.Fallback != nil {
		return c.Fallback.ScanMode()
	}
	return 0, fmt.Errorf("未指定扫描模式: %w", internal.ErrConfigMissing)
}

func (c FixedChooser) CleanMode() (internal.CleanMode, error) {
	if c.Clean != nil {
		return *c.Clean, nil
	}
	if c.Fallback != nil {
		return c.Fallback.CleanMode()
	}
	return internal.CleanSeparate, nil
}

type App struct {
	Fs      afero.Fs
	Store   store.Store
	Chooser Chooser
	// Ledger 可以为 nil
	Ledger quarantine.Ledger
	Config *config.Config
	Out    io.Writer
	// OnProgress 透传给哈希阶段
	OnProgress func(done, total int)
}

func New(fs afero.Fs, st store.Store, chooser Chooser, cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Get()
	}
	return &App{
		Fs:      fs,
		Store:   st,
		Chooser: chooser,
		Config:  cfg,
		Out:     os.Stdout,
	}
}

// ResolveDir 优先使用命令行给定的目录并记住它，否则使用上次记住的目录
func (a *App) ResolveDir(dir string) (string, error) {
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if err := a.Store.Set(store.KeyLastDir, dir); err != nil {
			logger.Get().Warn().Err(err).Msg("保存目录失败")
		}
		return dir, nil
	}

	saved, ok, err := a.Store.Get(store.KeyLastDir)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("读取上次使用的目录失败")
	}
	if !ok || saved == "" {
		return "", fmt.Errorf("no directory given and none saved, use --dir: %w", internal.ErrNotFound)
	}

	logger.Get().Info().Msgf("使用上次的目录: %s", saved)
	return saved, nil
}

func (a *App) deduplicator() *deduplicator.Deduplicator {
	return deduplicator.NewDeduplicator(a.Fs, deduplicator.Options{
		Workers:         a.Config.Performance.Workers,
		Extensions:      a.Config.Scanner.Extensions,
		AllExtensions:   a.Config.Scanner.AllExtensions,
		ImageExtensions: a.Config.Similarity.Extensions,
		Threshold:       a.Config.Similarity.Threshold,
		OnProgress:      a.OnProgress,
	})
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}
