package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// 扫描模式
type ScanMode int

const (
	ScanQuick ScanMode = iota
	ScanNormal
	ScanDeep
)

func (m ScanMode) String() string {
	switch m {
	case ScanQuick:
		return "quick"
	case ScanNormal:
		return "normal"
	case ScanDeep:
		return "deep"
	}
	return fmt.Sprintf("ScanMode(%d)", int(m))
}

func (m ScanMode) Valid() bool {
	return m >= ScanQuick && m <= ScanDeep
}

// ParseScanMode 接受名称 (quick/normal/deep) 或数字 (0/1/2)
func ParseScanMode(s string) (ScanMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "quick", "fast":
		return ScanQuick, nil
	case "normal":
		return ScanNormal, nil
	case "deep":
		return ScanDeep, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || !ScanMode(n).Valid() {
		return 0, fmt.Errorf("invalid scan mode %q: %w", s, ErrUnknownAlgorithm)
	}
	return ScanMode(n), nil
}

// 清理模式
type CleanMode int

const (
	CleanSeparate CleanMode = iota
	CleanSeparateAndPurge
)

func (m CleanMode) String() string {
	switch m {
	case CleanSeparate:
		return "separate"
	case CleanSeparateAndPurge:
		return "separate+purge"
	}
	return fmt.Sprintf("CleanMode(%d)", int(m))
}

// 文件记录
type FileRecord struct {
	Path string
	Size int64
	Ext  string
}
