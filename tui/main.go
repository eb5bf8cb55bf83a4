package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

// Select 显示一个单选菜单并返回选中项的下标，取消时返回 ErrCancelled
func Select(title string, options []Option, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("没有可选项: %s", title)
	}

	p := tea.NewProgram(newModel(title, options, defaultIndex))
	final, err := p.Run()
	if err != nil {
		logger.Get().Error().Err(err).Msg("TUI 运行错误")
		return 0, err
	}

	return result(final)
}

func result(final tea.Model) (int, error) {
	m, ok := final.(model)
	if !ok || m.cancelled || m.chosen < 0 {
		return 0, internal.ErrCancelled
	}
	return m.chosen, nil
}

var scanModeOptions = []Option{
	{Title: "Quick", Desc: "xxhash，速度最快"},
	{Title: "Normal", Desc: "blake3，默认"},
	{Title: "Deep", Desc: "sha256 + 相似图片检测"},
}

var cleanModeOptions = []Option{
	{Title: "Separate", Desc: "把重复文件移动到隔离目录"},
	{Title: "Separate and purge", Desc: "隔离后永久删除"},
}

// Chooser 通过交互菜单选择扫描和清理模式
type Chooser struct{}

func (Chooser) ScanMode() (internal.ScanMode, error) {
	i, err := Select("Select scan mode", scanModeOptions, int(internal.ScanNormal))
	if err != nil {
		return 0, err
	}
	return internal.ScanMode(i), nil
}

func (Chooser) CleanMode() (internal.CleanMode, error) {
	i, err := Select("Select clean mode", cleanModeOptions, int(internal.CleanSeparate))
	if err != nil {
		return 0, err
	}
	return internal.CleanMode(i), nil
}
