package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))
)

// Report 一次命令执行的清理统计，只由调用方喂入数据，不访问文件系统
type Report struct {
	FilesFound   int
	FilesRemoved int
	BytesFreed   int64
	Removed      []string
}

func New() *Report {
	return &Report{}
}

func (r *Report) Add(path string, size int64) {
	r.FilesRemoved++
	r.BytesFreed += size
	r.Removed = append(r.Removed, path)
}

func (r *Report) SetFound(count int) {
	r.FilesFound = count
}

func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Cleanup Report"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("Files found   :"), r.FilesFound)
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("Files removed :"), r.FilesRemoved)
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Space freed   :"), FormatBytes(r.BytesFreed))

	if len(r.Removed) > 0 {
		fmt.Fprintf(&b, "  %s\n", labelStyle.Render("Removed files:"))
		for _, path := range r.Removed {
			fmt.Fprintf(&b, "    %s\n", pathStyle.Render(path))
		}
	}

	return b.String()
}

func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
