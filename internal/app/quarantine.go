package app

import (
	"github.com/Yuvraj-cyborg/deduck/pkg/quarantine"
	"github.com/Yuvraj-cyborg/deduck/pkg/report"
)

// Restore 把隔离目录中的文件移回根目录
func (a *App) Restore(dir string) ([]quarantine.Entry, error) {
	root, err := a.ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	restored, err := quarantine.NewManager(a.Fs, a.Ledger).Restore(quarantine.Dir(root), root)
	if err != nil {
		return restored, err
	}

	a.printf("Restored %d quarantined files.\n", len(restored))
	return restored, nil
}

// Purge 永久删除隔离目录并打印报告
func (a *App) Purge(dir string) (*report.Report, error) {
	root, err := a.ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	purged, err := quarantine.NewManager(a.Fs, a.Ledger).Purge(quarantine.Dir(root))
	if err != nil {
		return nil, err
	}

	rep := report.New()
	for _, entry := range purged {
		rep.Add(entry.Path, entry.Size)
	}

	a.printf("Quarantine folder deleted.\n")
	a.printf("%s", rep.Render())
	return rep, nil
}
