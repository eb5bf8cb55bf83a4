package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/internal/app"
	"github.com/Yuvraj-cyborg/deduck/tui"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "列出目录下的所有文件",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(tui.Chooser{})
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		_, err = a.Scan(dir)
		return err
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "检测重复文件并保存扫描模式，不修改文件",
	Long: `检测重复文件并打印分组。扫描模式:
  quick  (0) xxhash
  normal (1) blake3
  deep   (2) sha256，并查找相似图片
未指定 --mode 时交互选择。选择的模式会被 clean 使用。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chooser := app.FixedChooser{Fallback: tui.Chooser{}}
		if cmd.Flags().Changed("mode") {
			value, _ := cmd.Flags().GetString("mode")
			mode, err := internal.ParseScanMode(value)
			if err != nil {
				return err
			}
			chooser.Scan = &mode
		}

		a, err := newApp(chooser)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		_, err = a.Filter(dir)
		return err
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "把重复文件移动到隔离目录，可选永久删除",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chooser := app.FixedChooser{Fallback: tui.Chooser{}}
		if cmd.Flags().Changed("purge") {
			purge, _ := cmd.Flags().GetBool("purge")
			mode := internal.CleanSeparate
			if purge {
				mode = internal.CleanSeparateAndPurge
			}
			chooser.Clean = &mode
		}

		a, err := newApp(chooser)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		_, err = a.Clean(dir)
		return err
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "把隔离目录中的文件恢复到根目录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(tui.Chooser{})
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		_, err = a.Restore(dir)
		return err
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "永久删除隔离目录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(tui.Chooser{})
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		_, err = a.Purge(dir)
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{scanCmd, filterCmd, cleanCmd, restoreCmd, purgeCmd} {
		addDirFlag(c)
		rootCmd.AddCommand(c)
	}

	filterCmd.Flags().StringP("mode", "m", "", fmt.Sprintf("扫描模式: %s|%s|%s 或 0|1|2",
		internal.ScanQuick, internal.ScanNormal, internal.ScanDeep))
	cleanCmd.Flags().Bool("purge", false, "隔离后永久删除隔离目录")
}
