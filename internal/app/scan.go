package app

import (
	"github.com/Yuvraj-cyborg/deduck/pkg/quarantine"
	"github.com/Yuvraj-cyborg/deduck/pkg/scanner"
)

// Scan 列出目录下的所有普通文件
func (a *App) Scan(dir string) (int, error) {
	root, err := a.ResolveDir(dir)
	if err != nil {
		return 0, err
	}

	records, err := scanner.Scan(a.Fs, root, quarantine.Dir(root))
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		a.printf("No files found in %s\n", root)
		return 0, nil
	}

	a.printf("Found %d files:\n", len(records))
	for _, r := range records {
		a.printf("%s\n", r.Path)
	}
	return len(records), nil
}
