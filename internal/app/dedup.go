package app

import (
	"fmt"
	"strconv"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/deduplicator"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
	"github.com/Yuvraj-cyborg/deduck/pkg/quarantine"
	"github.com/Yuvraj-cyborg/deduck/pkg/report"
	"github.com/Yuvraj-cyborg/deduck/pkg/store"
)

// Filter 选择扫描模式并保存，然后打印重复分组，不修改任何文件
func (a *App) Filter(dir string) (*deduplicator.Result, error) {
	root, err := a.ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	mode, err := a.Chooser.ScanMode()
	if err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("scan mode %d: %w", mode, internal.ErrUnknownAlgorithm)
	}

	if err := a.Store.Set(store.KeyScanMode, strconv.Itoa(int(mode))); err != nil {
		logger.Get().Warn().Err(err).Msg("保存扫描模式失败")
	}

	result, err := a.deduplicator().Detect(root, mode)
	if err != nil {
		return nil, err
	}

	a.printGroups(result)
	return result, nil
}

// Clean 使用保存的扫描模式检测重复文件并移入隔离目录，可选地随后永久删除
func (a *App) Clean(dir string) (*report.Report, error) {
	root, err := a.ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	mode, err := a.savedScanMode()
	if err != nil {
		return nil, err
	}

	cleanMode, err := a.Chooser.CleanMode()
	if err != nil {
		return nil, err
	}

	result, err := a.deduplicator().Detect(root, mode)
	if err != nil {
		return nil, err
	}
	a.printGroups(result)

	rep := report.New()
	rep.SetFound(result.FilesFound)

	plan := deduplicator.QuarantinePlan(result.Groups)
	qdir := quarantine.Dir(root)
	manager := quarantine.NewManager(a.Fs, a.Ledger)

	if len(plan) > 0 {
		moved, err := manager.Quarantine(plan, qdir)
		for _, entry := range moved {
			rep.Add(entry.Source, entry.Size)
		}
		if err != nil {
			a.printf("%s", rep.Render())
			return rep, err
		}
		a.printf("Moved %d files to %s\n", len(moved), qdir)
	}

	if cleanMode == internal.CleanSeparateAndPurge {
		if _, err := manager.Purge(qdir); err != nil {
			return rep, err
		}
		a.printf("Quarantine folder deleted: %s\n", qdir)
	}

	a.printf("%s", rep.Render())
	return rep, nil
}

func (a *App) savedScanMode() (internal.ScanMode, error) {
	value, ok, err := a.Store.Get(store.KeyScanMode)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("读取扫描模式失败")
	}
	if !ok {
		return 0, fmt.Errorf("no scan mode saved, run `deduck filter` first: %w", internal.ErrConfigMissing)
	}

	mode, err := internal.ParseScanMode(value)
	if err != nil {
		return 0, fmt.Errorf("saved scan mode is invalid, run `deduck filter` again: %w", err)
	}
	return mode, nil
}

func (a *App) printGroups(result *deduplicator.Result) {
	if result.FilesFound == 0 {
		a.printf("No files found in the directory.\n")
		return
	}
	if len(result.Groups) == 0 {
		a.printf("No duplicate files found.\n")
		return
	}

	for _, g := range result.Groups {
		switch g.Kind {
		case deduplicator.Exact:
			a.printf("\nDuplicate hash (%s): %s\n", result.Algorithm, g.ID)
		case deduplicator.Similar:
			a.printf("\nSimilar images to: %s\n", g.ID)
		}
		for _, path := range g.Paths {
			a.printf("    %s\n", path)
		}
	}
	a.printf("\n")
}
